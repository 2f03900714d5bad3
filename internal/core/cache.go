package core

import (
	"context"
	"time"
)

// Cache is a keyed store with per-entry TTL. The CSV read cache holds
// models.CSVFile values keyed by athlete ID; the metrics cache holds counts.
type Cache[T any] interface {
	// Get returns cache.ErrCacheMiss for absent or expired keys
	Get(ctx context.Context, key string) (T, error)
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
	Health(ctx context.Context) error

	// GetWithFetch reads key, calling fetchFunc and storing its result on a
	// miss. Fetch errors are returned to the caller and not cached. Only the
	// redis-aside implementation collapses concurrent misses into one fetch.
	GetWithFetch(
		ctx context.Context,
		key string,
		ttl time.Duration,
		fetchFunc func(ctx context.Context, key string) (T, error),
	) (T, error)
}
