package pricing

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"strings"

	domain "github.com/pricing/backend/internal/domain/pricing"
	"go.uber.org/zap"
)

// LiveQuoteClient fetches competitor prices from the external API.
// The API is best-effort; failures here are an expected condition.
type LiveQuoteClient interface {
	FetchQuote(ctx context.Context, sku string) (float64, error)
	FetchQuotes(ctx context.Context, skus []string) (map[string]float64, error)
}

// knownPriceBands are the bands for SKUs the market desk tracks directly
var knownPriceBands = map[string][2]float64{
	"P001": {80, 120},
	"P002": {150, 250},
	"P003": {40, 65},
}

var marketTrendFactors = []float64{0.95, 0.98, 1.00, 1.02, 1.05}

// CompetitorPriceProvider resolves competitor prices through a fallback
// chain: fresh cache entry, live fetch, deterministic mock. Resolution
// always succeeds; every resolved price is written back to the cache.
type CompetitorPriceProvider struct {
	cache  domain.QuoteCache
	client LiveQuoteClient
	clock  Clock
	logger *zap.Logger
}

// NewCompetitorPriceProvider creates a provider
func NewCompetitorPriceProvider(cache domain.QuoteCache, client LiveQuoteClient, clock Clock, logger *zap.Logger) *CompetitorPriceProvider {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompetitorPriceProvider{
		cache:  cache,
		client: client,
		clock:  clock,
		logger: logger,
	}
}

// GetPrice resolves one competitor price by SKU
func (p *CompetitorPriceProvider) GetPrice(ctx context.Context, sku string) (float64, error) {
	if cached, err := p.cache.Get(ctx, sku); err != nil {
		p.logger.Debug("quote cache read failed", zap.String("sku", sku), zap.Error(err))
	} else if cached != nil {
		return cached.Price, nil
	}

	price, err := p.client.FetchQuote(ctx, sku)
	if err != nil {
		// the external API being down is the normal case
		p.logger.Debug("live competitor fetch failed", zap.String("sku", sku), zap.Error(err))
		price = p.mockPrice(sku)
	}

	p.storeQuote(ctx, sku, price)
	return price, nil
}

// GetPrices resolves competitor prices for many SKUs. It tries one batched
// live fetch first and falls back to resolving each SKU independently.
func (p *CompetitorPriceProvider) GetPrices(ctx context.Context, skus []string) (map[string]float64, error) {
	quotes, err := p.client.FetchQuotes(ctx, skus)
	if err == nil {
		for sku, price := range quotes {
			p.storeQuote(ctx, sku, price)
		}
		return quotes, nil
	}
	p.logger.Debug("bulk competitor fetch failed", zap.Int("skus", len(skus)), zap.Error(err))

	result := make(map[string]float64, len(skus))
	for _, sku := range skus {
		price, err := p.GetPrice(ctx, sku)
		if err != nil {
			return nil, err
		}
		result[sku] = price
	}
	return result, nil
}

// CacheStats reports cache occupancy
func (p *CompetitorPriceProvider) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	return p.cache.Stats(ctx)
}

// InvalidateCache drops every cached quote
func (p *CompetitorPriceProvider) InvalidateCache(ctx context.Context) error {
	return p.cache.Invalidate(ctx)
}

func (p *CompetitorPriceProvider) storeQuote(ctx context.Context, sku string, price float64) {
	quote := domain.CompetitorQuote{SKU: sku, Price: price, ResolvedAt: p.clock.Now()}
	if err := p.cache.Put(ctx, quote); err != nil {
		p.logger.Warn("quote cache write failed", zap.String("sku", sku), zap.Error(err))
	}
}

// mockPrice generates a deterministic competitor price for a SKU. The
// draw is seeded purely from the SKU, so repeated calls within the same
// trend hour return the same price; only the hourly trend factor moves it.
func (p *CompetitorPriceProvider) mockPrice(sku string) float64 {
	rng := rand.New(rand.NewSource(int64(skuHash(sku))))

	band := priceBand(sku)
	variation := -0.2 + rng.Float64()*0.4
	base := band[0] + rng.Float64()*(band[1]-band[0])
	price := base * (1 + variation) * p.trendFactor()

	return roundCents(price)
}

// trendFactor picks the hourly market-trend multiplier. The choice is
// seeded by the unix hour so it is stable within an hour and shifts on
// the hour boundary.
func (p *CompetitorPriceProvider) trendFactor() float64 {
	hourBucket := p.clock.Now().Unix() / 3600
	rng := rand.New(rand.NewSource(hourBucket))
	return marketTrendFactors[rng.Intn(len(marketTrendFactors))]
}

// priceBand selects the (min, max) band for a SKU: a fixed table for
// known SKUs, a numeric suffix after the "P00" prefix otherwise, and a
// catch-all default for everything else.
func priceBand(sku string) [2]float64 {
	if band, ok := knownPriceBands[sku]; ok {
		return band
	}
	if strings.HasPrefix(sku, "P00") {
		if num, err := strconv.Atoi(sku[3:]); err == nil {
			switch {
			case num <= 100:
				return [2]float64{50, 150}
			case num <= 500:
				return [2]float64{100, 300}
			default:
				return [2]float64{20, 80}
			}
		}
	}
	return [2]float64{50, 150}
}

func skuHash(sku string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sku))
	return h.Sum32()
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
