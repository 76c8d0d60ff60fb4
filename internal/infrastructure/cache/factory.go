package cache

import (
	"fmt"

	"github.com/pricing/backend/internal/domain/pricing"
	"github.com/pricing/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// QuoteCacheFactory creates quote caches based on configuration
type QuoteCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// QuoteCacheFactoryOption is a functional option for configuring the factory
type QuoteCacheFactoryOption func(*QuoteCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) QuoteCacheFactoryOption {
	return func(f *QuoteCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) QuoteCacheFactoryOption {
	return func(f *QuoteCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewQuoteCacheFactory creates a new factory
func NewQuoteCacheFactory(cfg config.RedisConfig, opts ...QuoteCacheFactoryOption) *QuoteCacheFactory {
	f := &QuoteCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed quote cache
func (f *QuoteCacheFactory) CreateRedisCache() (pricing.QuoteCache, error) {
	cache, err := NewRedisQuoteCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis quote cache: %w", err)
	}
	return cache, nil
}

// CreateInMemoryCache creates an in-memory quote cache
func (f *QuoteCacheFactory) CreateInMemoryCache() pricing.QuoteCache {
	return NewInMemoryQuoteCache()
}

// CreateCache creates a quote cache based on whether Redis is available.
// It tries Redis first and falls back to in-memory if Redis is not
// available and fallback is allowed.
func (f *QuoteCacheFactory) CreateCache() (pricing.QuoteCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis quote cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for quote cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory quote cache. "+
		"Competitor quotes will not be shared across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
