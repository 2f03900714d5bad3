package metrics

import (
	"context"
	"time"

	"github.com/go-authgate/stravaexport/internal/core"
)

// CacheWrapper provides a read-through cache for metrics data.
// It queries the database on cache miss and updates the cache for subsequent requests.
type CacheWrapper struct {
	store core.MetricsStore
	cache core.Cache[int64]
}

// NewCacheWrapper creates a new cache wrapper for metrics.
func NewCacheWrapper(store core.MetricsStore, cache core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{
		store: store,
		cache: cache,
	}
}

// GetStoredCSVFilesCount retrieves the number of stored exports.
// Uses cache-aside pattern via GetWithFetch.
func (m *CacheWrapper) GetStoredCSVFilesCount(
	ctx context.Context,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(ctx, "csvfiles:total", ttl, m.store.CountCSVFiles)
}

// getCountWithCache retrieves a count using the cache-aside pattern.
func (m *CacheWrapper) getCountWithCache(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func() (int64, error),
) (int64, error) {
	return m.cache.GetWithFetch(
		ctx,
		key,
		ttl,
		func(ctx context.Context, key string) (int64, error) {
			return fetchFunc()
		},
	)
}
