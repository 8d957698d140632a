package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache: key not found")

// Store is the key-value cache consumed by tenant resolution, catalog
// invalidation and rate limiting. Implementations must make Increment
// atomic across concurrent callers; everything else is best-effort.
// Callers are expected to degrade gracefully when a Store errors.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern removes all keys matching a glob-style pattern
	DeletePattern(ctx context.Context, pattern string) error
	// Increment atomically increments the counter at key and starts its
	// TTL on first increment. Returns the value after increment.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Close() error
}
