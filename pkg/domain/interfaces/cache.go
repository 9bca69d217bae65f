package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheStore.Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// CacheStore is a key/value store with per-key TTL and prefix-based bulk
// deletion. Implementations must treat an expired entry as absent.
type CacheStore interface {
	// Get returns the value for the key, or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// SetWithTTL stores the value; the entry expires after ttl
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// KeysMatching returns all live keys with the given prefix
	KeysMatching(ctx context.Context, prefix string) ([]string, error)

	// DeleteMany removes the given keys; missing keys are ignored
	DeleteMany(ctx context.Context, keys []string) error

	Close() error
}
