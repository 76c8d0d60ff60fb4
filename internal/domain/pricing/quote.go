package pricing

import (
	"context"
	"time"
)

// QuoteTTL is how long a resolved competitor quote stays usable
const QuoteTTL = time.Hour

// CompetitorQuote is a competitor price resolved for a product SKU
type CompetitorQuote struct {
	SKU        string    `json:"sku"`
	Price      float64   `json:"price"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Expired reports whether the quote is older than the TTL at the given time
func (q CompetitorQuote) Expired(now time.Time) bool {
	return now.Sub(q.ResolvedAt) >= QuoteTTL
}

// CacheStats describes the state of a quote cache
type CacheStats struct {
	TotalEntries   int     `json:"total_entries"`
	ValidEntries   int     `json:"valid_entries"`
	ExpiredEntries int     `json:"expired_entries"`
	TTLHours       float64 `json:"cache_duration_hours"`
}

// QuoteCache stores competitor quotes with a TTL. Get must never return a
// stale quote; Put overwrites any prior entry for the SKU.
type QuoteCache interface {
	Get(ctx context.Context, sku string) (*CompetitorQuote, error)
	Put(ctx context.Context, quote CompetitorQuote) error
	Stats(ctx context.Context) (CacheStats, error)
	Invalidate(ctx context.Context) error
}
