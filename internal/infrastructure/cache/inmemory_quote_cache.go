package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pricing/backend/internal/domain/pricing"
)

// InMemoryQuoteCache implements QuoteCache with a process-local map.
// Suitable for single-instance deployments and testing; quotes are not
// shared across instances.
type InMemoryQuoteCache struct {
	mu     sync.RWMutex
	quotes map[string]pricing.CompetitorQuote
	now    func() time.Time
}

// NewInMemoryQuoteCache creates a new in-memory quote cache
func NewInMemoryQuoteCache() *InMemoryQuoteCache {
	return &InMemoryQuoteCache{
		quotes: make(map[string]pricing.CompetitorQuote),
		now:    time.Now,
	}
}

// Get returns the cached quote for a SKU, or nil when missing or expired
func (c *InMemoryQuoteCache) Get(ctx context.Context, sku string) (*pricing.CompetitorQuote, error) {
	c.mu.RLock()
	quote, ok := c.quotes[sku]
	c.mu.RUnlock()

	if !ok || quote.Expired(c.now()) {
		return nil, nil
	}
	return &quote, nil
}

// Put stores a quote, replacing any prior entry for the SKU
func (c *InMemoryQuoteCache) Put(ctx context.Context, quote pricing.CompetitorQuote) error {
	c.mu.Lock()
	c.quotes[quote.SKU] = quote
	c.mu.Unlock()
	return nil
}

// Stats counts valid and expired entries
func (c *InMemoryQuoteCache) Stats(ctx context.Context) (pricing.CacheStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := pricing.CacheStats{
		TotalEntries: len(c.quotes),
		TTLHours:     pricing.QuoteTTL.Hours(),
	}
	now := c.now()
	for _, quote := range c.quotes {
		if quote.Expired(now) {
			stats.ExpiredEntries++
		} else {
			stats.ValidEntries++
		}
	}
	return stats, nil
}

// Invalidate drops all entries
func (c *InMemoryQuoteCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.quotes = make(map[string]pricing.CompetitorQuote)
	c.mu.Unlock()
	return nil
}

// Ensure InMemoryQuoteCache implements QuoteCache
var _ pricing.QuoteCache = (*InMemoryQuoteCache)(nil)
