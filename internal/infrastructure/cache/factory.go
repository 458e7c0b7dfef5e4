package cache

import (
	"context"
	"fmt"

	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/apparel/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the Redis or in-memory coordination stores
type Stores struct {
	Idempotency shared.IdempotencyStore
	Locker      Locker
	Catalog     JSONCache
	Redis       *redis.Client // nil when running in memory
	closers     []func() error
}

// Close releases every store and the Redis client
func (s *Stores) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// Factory creates stores based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// NewFactory creates a new Factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Build connects to Redis when enabled and falls back to in-memory stores
// when Redis is disabled or, if allowed, unreachable
func (f *Factory) Build(ctx context.Context) (*Stores, error) {
	if f.redisConfig.Enabled {
		client, err := NewRedisClient(ctx, f.redisConfig)
		if err == nil {
			f.logger.Info("Using Redis for idempotency, locks and catalog cache",
				zap.String("addr", f.redisConfig.Addr()))
			return &Stores{
				Idempotency: NewRedisIdempotencyStore(client, ""),
				Locker:      NewRedisLocker(client, ""),
				Catalog:     NewRedisJSONCache(client, "", f.logger),
				Redis:       client,
				closers:     []func() error{client.Close},
			}, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Webhook deduplication and checkout locks will not be shared across instances.",
			zap.Error(err))
	}
	return f.inMemory(), nil
}

func (f *Factory) inMemory() *Stores {
	idem := NewInMemoryIdempotencyStore()
	locker := NewInMemoryLocker()
	catalog := NewInMemoryJSONCache()
	return &Stores{
		Idempotency: idem,
		Locker:      locker,
		Catalog:     catalog,
		closers:     []func() error{idem.Close, locker.Close, catalog.Close},
	}
}
