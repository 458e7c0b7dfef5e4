package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultScanBatchSize = 100

// JSONCache stores JSON-encoded values under string keys
type JSONCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) error
}

// RedisJSONCache stores JSON-encoded values in Redis
type RedisJSONCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisJSONCache creates a cache over an existing Redis client
func NewRedisJSONCache(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisJSONCache {
	if keyPrefix == "" {
		keyPrefix = "storefront:cache:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisJSONCache{client: client, keyPrefix: keyPrefix, logger: logger}
}

// Get decodes the cached value for key into dest. Returns false on a miss.
func (c *RedisJSONCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss", zap.String("key", key))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt entries are dropped and treated as a miss
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, c.keyPrefix+key).Err()
		return false, nil
	}
	return true, nil
}

// Set stores value under key for ttl
func (c *RedisJSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}
	return nil
}

// Invalidate removes every key starting with prefix
func (c *RedisJSONCache) Invalidate(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+prefix+"*", defaultScanBatchSize).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	c.logger.Debug("Invalidated cache keys", zap.String("prefix", prefix), zap.Int("count", len(keys)))
	return nil
}

// InMemoryJSONCache is the single-instance JSON cache
type InMemoryJSONCache struct {
	values *ttlMap[[]byte]
}

// NewInMemoryJSONCache creates a new InMemoryJSONCache
func NewInMemoryJSONCache() *InMemoryJSONCache {
	return &InMemoryJSONCache{values: newTTLMap[[]byte](time.Minute)}
}

// Get decodes the cached value for key into dest. Returns false on a miss.
func (c *InMemoryJSONCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, ok := c.values.get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.values.delete(key)
		return false, nil
	}
	return true, nil
}

// Set stores value under key for ttl
func (c *InMemoryJSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	c.values.set(key, data, ttl)
	return nil
}

// Invalidate removes every key starting with prefix
func (c *InMemoryJSONCache) Invalidate(ctx context.Context, prefix string) error {
	c.values.deletePrefix(prefix)
	return nil
}

// Close stops the sweeper
func (c *InMemoryJSONCache) Close() error {
	c.values.close()
	return nil
}

var (
	_ JSONCache = (*RedisJSONCache)(nil)
	_ JSONCache = (*InMemoryJSONCache)(nil)
)
