package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker hands out exclusive, expiring locks. The returned release func
// gives the lock back; releasing an expired or stolen lock is a no-op.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

func noopRelease(context.Context) error { return nil }

// releaseScript deletes the lock only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker hands out short-lived exclusive locks shared by all instances
type RedisLocker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLocker creates a locker over an existing Redis client
func NewRedisLocker(client *redis.Client, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "storefront:lock:"
	}
	return &RedisLocker{client: client, keyPrefix: keyPrefix}
}

// Acquire tries to take the lock for key. It does not wait: ok is false
// when another holder has it.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()
	redisKey := l.keyPrefix + key
	ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return noopRelease, false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return noopRelease, false, nil
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock: %w", err)
		}
		return nil
	}, true, nil
}

// InMemoryLocker is the single-instance Locker
type InMemoryLocker struct {
	locks *ttlMap[string]
}

// NewInMemoryLocker creates a new InMemoryLocker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{locks: newTTLMap[string](time.Minute)}
}

// Acquire tries to take the lock for key without waiting
func (l *InMemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if err := ctx.Err(); err != nil {
		return noopRelease, false, err
	}
	token := uuid.NewString()
	if !l.locks.setNX(key, token, ttl) {
		return noopRelease, false, nil
	}
	return func(context.Context) error {
		l.locks.deleteIf(key, func(held string) bool { return held == token })
		return nil
	}, true, nil
}

// Close stops the sweeper
func (l *InMemoryLocker) Close() error {
	l.locks.close()
	return nil
}

var (
	_ Locker = (*RedisLocker)(nil)
	_ Locker = (*InMemoryLocker)(nil)
)
