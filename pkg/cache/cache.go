// Package cache stores fetched metadata for a while, in redis when
// configured and in process memory otherwise.
package cache

import (
	"context"
	"time"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/metrics"
)

// Cache is a byte value store with expiry
type Cache interface {
	// Get returns the value and true, or false when the key is absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// New returns a redis cache for a redis:// url, or a memory cache when url
// is blank
func New(url string) (Cache, error) {
	if url == "" {
		return NewMemory(), nil
	}
	return NewRedis(url)
}

// GetOrLoad returns the cached value of key, calling load and caching its
// result on a miss. Cache failures are logged and treated as misses.
func GetOrLoad(ctx context.Context, c Cache, key string, ttl time.Duration, load func() ([]byte, error)) ([]byte, error) {
	value, ok, err := c.Get(ctx, key)
	if err != nil {
		logging.Log.WithError(err).WithField("key", key).Warn("cache read failed")
	}
	metrics.RecordCacheLookup(ok)
	if ok {
		return value, nil
	}

	value, err = load()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		logging.Log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return value, nil
}
