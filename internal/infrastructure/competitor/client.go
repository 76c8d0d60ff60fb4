package competitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apppricing "github.com/pricing/backend/internal/application/pricing"
	"github.com/pricing/backend/internal/infrastructure/config"
)

// HTTPQuoteClient fetches competitor prices from an external price feed.
// Single lookups GET {base_url}/{sku}; bulk lookups POST {base_url}/bulk.
type HTTPQuoteClient struct {
	baseURL string
	single  *http.Client
	bulk    *http.Client
}

// NewHTTPQuoteClient creates a client for the configured price feed
func NewHTTPQuoteClient(cfg config.CompetitorConfig) *HTTPQuoteClient {
	return &HTTPQuoteClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		single:  &http.Client{Timeout: cfg.FetchTimeout},
		bulk:    &http.Client{Timeout: cfg.BulkTimeout},
	}
}

type quoteResponse struct {
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
}

type bulkQuoteRequest struct {
	SKUs []string `json:"skus"`
}

type bulkQuoteResponse struct {
	Quotes []quoteResponse `json:"quotes"`
}

// FetchQuote fetches the competitor price for one SKU
func (c *HTTPQuoteClient) FetchQuote(ctx context.Context, sku string) (float64, error) {
	if c.baseURL == "" {
		return 0, fmt.Errorf("no competitor price feed configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(sku), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build quote request: %w", err)
	}

	resp, err := c.single.Do(req)
	if err != nil {
		return 0, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price feed returned status %d for %s", resp.StatusCode, sku)
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return 0, fmt.Errorf("failed to decode quote response: %w", err)
	}
	if quote.Price <= 0 {
		return 0, fmt.Errorf("price feed returned non-positive price for %s", sku)
	}
	return quote.Price, nil
}

// FetchQuotes fetches competitor prices for many SKUs in one request.
// SKUs the feed does not know are absent from the result map.
func (c *HTTPQuoteClient) FetchQuotes(ctx context.Context, skus []string) (map[string]float64, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("no competitor price feed configured")
	}
	if len(skus) == 0 {
		return map[string]float64{}, nil
	}

	payload, err := json.Marshal(bulkQuoteRequest{SKUs: skus})
	if err != nil {
		return nil, fmt.Errorf("failed to encode bulk quote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bulk", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build bulk quote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.bulk.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bulk quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed returned status %d for bulk lookup", resp.StatusCode)
	}

	var body bulkQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode bulk quote response: %w", err)
	}

	quotes := make(map[string]float64, len(body.Quotes))
	for _, quote := range body.Quotes {
		if quote.Price > 0 {
			quotes[quote.SKU] = quote.Price
		}
	}
	return quotes, nil
}

// Ensure HTTPQuoteClient implements LiveQuoteClient
var _ apppricing.LiveQuoteClient = (*HTTPQuoteClient)(nil)
