package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pricing/backend/internal/domain/pricing"
	"github.com/redis/go-redis/v9"
)

// RedisQuoteCache implements QuoteCache using Redis. Entries expire
// server-side, so multiple instances share one consistent quote view.
type RedisQuoteCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisQuoteCache creates a new Redis-backed quote cache
func NewRedisQuoteCache(cfg RedisConfig) (*RedisQuoteCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQuoteCache{
		client:    client,
		keyPrefix: "competitor:quote:",
	}, nil
}

// NewRedisQuoteCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisQuoteCacheWithClient(client *redis.Client, keyPrefix string) *RedisQuoteCache {
	if keyPrefix == "" {
		keyPrefix = "competitor:quote:"
	}
	return &RedisQuoteCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached quote for a SKU, or nil when missing.
// Redis enforces the TTL, so a returned quote is always usable.
func (c *RedisQuoteCache) Get(ctx context.Context, sku string) (*pricing.CompetitorQuote, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+sku).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quote from Redis: %w", err)
	}

	var quote pricing.CompetitorQuote
	if err := json.Unmarshal(payload, &quote); err != nil {
		return nil, fmt.Errorf("failed to decode cached quote: %w", err)
	}
	return &quote, nil
}

// Put stores a quote with the standard TTL
func (c *RedisQuoteCache) Put(ctx context.Context, quote pricing.CompetitorQuote) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+quote.SKU, payload, pricing.QuoteTTL).Err(); err != nil {
		return fmt.Errorf("failed to write quote to Redis: %w", err)
	}
	return nil
}

// Stats counts entries under the quote prefix. Redis drops expired keys
// itself, so every counted entry is valid.
func (c *RedisQuoteCache) Stats(ctx context.Context) (pricing.CacheStats, error) {
	total, err := c.countKeys(ctx)
	if err != nil {
		return pricing.CacheStats{}, err
	}
	return pricing.CacheStats{
		TotalEntries: total,
		ValidEntries: total,
		TTLHours:     pricing.QuoteTTL.Hours(),
	}, nil
}

// Invalidate drops all quote keys
func (c *RedisQuoteCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete quote key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan quote keys: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisQuoteCache) Close() error {
	return c.client.Close()
}

func (c *RedisQuoteCache) countKeys(ctx context.Context) (int, error) {
	var count int
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan quote keys: %w", err)
	}
	return count, nil
}

// Ensure RedisQuoteCache implements QuoteCache
var _ pricing.QuoteCache = (*RedisQuoteCache)(nil)
