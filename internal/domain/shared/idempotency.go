package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL covers the retry window of both payment providers
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore records webhook event ids so a redelivered event is
// applied once. Implementations: Redis (SET NX) and in-memory.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It reports false when the key
	// was already claimed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release drops a claim so a failed delivery can be retried
	Release(ctx context.Context, key string) error
	Close() error
}
