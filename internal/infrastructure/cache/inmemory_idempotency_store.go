package cache

import (
	"context"
	"time"

	"github.com/apparel/storefront/internal/domain/shared"
)

// InMemoryIdempotencyStore implements IdempotencyStore in process memory.
// Suitable for single-instance deployments and tests.
type InMemoryIdempotencyStore struct {
	keys *ttlMap[struct{}]
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{keys: newTTLMap[struct{}](5 * time.Minute)}
}

// MarkProcessed marks a key as processed with a TTL.
// Returns true if the key was newly marked, false if it was already processed.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.keys.setNX(key, struct{}{}, ttl), nil
}

// IsProcessed checks if a key has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	_, ok := s.keys.get(key)
	return ok, nil
}

// Release forgets a key
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.keys.delete(key)
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.keys.close()
	return nil
}

// Size returns the number of entries in the store
func (s *InMemoryIdempotencyStore) Size() int {
	return s.keys.len()
}

// Ensure InMemoryIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
