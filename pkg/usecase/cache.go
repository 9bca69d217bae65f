package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/utils/errutil"
)

// DefaultCacheTTL bounds the staleness of any cached read result
const DefaultCacheTTL = 30 * time.Minute

const actionCacheNamespace = "actions"

// QueryCache caches serialized read results in a CacheStore. Keys are
// namespace:operation:params so a whole namespace can be invalidated by
// prefix after a mutation. Store failures degrade to a direct fetch; the
// cache is never load-bearing for correctness.
type QueryCache struct {
	store interfaces.CacheStore
	ttl   time.Duration
}

// CacheOption is a functional option for QueryCache configuration
type CacheOption func(*QueryCache)

// WithCacheTTL overrides the default entry TTL
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *QueryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewQueryCache creates a query cache over the given store. A nil store
// yields a pass-through cache that always fetches.
func NewQueryCache(store interfaces.CacheStore, opts ...CacheOption) *QueryCache {
	c := &QueryCache{
		store: store,
		ttl:   DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// cacheKey builds the deterministic key for one query. json.Marshal sorts map
// keys and walks struct fields in order, so equal params always produce the
// same key.
func cacheKey(namespace, operation string, params any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build cache key",
			goerr.V("namespace", namespace), goerr.V("operation", operation))
	}
	return fmt.Sprintf("%s:%s:%s", namespace, operation, raw), nil
}

// Invalidate drops every cached entry in the namespace
func (c *QueryCache) Invalidate(ctx context.Context, namespace string) error {
	if c.store == nil {
		return nil
	}
	keys, err := c.store.KeysMatching(ctx, namespace+":")
	if err != nil {
		return goerr.Wrap(err, "failed to list cache keys", goerr.V("namespace", namespace))
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.DeleteMany(ctx, keys); err != nil {
		return goerr.Wrap(err, "failed to delete cache keys",
			goerr.V("namespace", namespace), goerr.V("count", len(keys)))
	}
	return nil
}

// readThrough returns the cached result for (namespace, operation, params) or
// runs fetch and caches what it returns. Cache read/write failures are logged
// and the fetch result is returned regardless.
func readThrough[T any](ctx context.Context, c *QueryCache, namespace, operation string, params any, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil || c.store == nil {
		return fetch(ctx)
	}

	key, err := cacheKey(namespace, operation, params)
	if err != nil {
		return zero, err
	}

	if raw, err := c.store.Get(ctx, key); err == nil {
		var cached T
		decodeErr := json.Unmarshal(raw, &cached)
		if decodeErr == nil {
			return cached, nil
		}
		errutil.Handle(ctx, decodeErr, "failed to decode cached result")
	} else if !errors.Is(err, interfaces.ErrCacheMiss) {
		errutil.Handle(ctx, err, "cache read failed")
	}

	result, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := c.store.SetWithTTL(ctx, key, raw, c.ttl); err != nil {
			errutil.Handle(ctx, err, "cache write failed")
		}
	}

	return result, nil
}
