package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyPrefix = "storefront:idempotency:"

// RedisIdempotencyStore implements IdempotencyStore using Redis.
// Instances sharing the Redis server share the processed keys.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store with an existing Redis client.
// The caller keeps ownership of the client.
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks a key as processed with a TTL using SETNX.
// Returns true if the key was newly marked, false if it was already processed.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark key as processed: %w", err)
	}
	return ok, nil
}

// IsProcessed checks if a key has already been processed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if key is processed: %w", err)
	}
	return exists > 0, nil
}

// Release forgets a key so the next delivery is processed again
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release key: %w", err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

// Ensure RedisIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
