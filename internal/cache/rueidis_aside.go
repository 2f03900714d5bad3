package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-authgate/stravaexport/internal/core"

	"github.com/redis/rueidis/rueidisaside"
)

// Compile-time interface check.
var _ core.Cache[struct{}] = (*RueidisAsideCache[struct{}])(nil)

// RueidisAsideCache implements Cache using rueidisaside. Reads go through
// rueidis' client-side cache (RESP3 invalidation), and concurrent misses on
// the same key share a single fetch.
type RueidisAsideCache[T any] struct {
	client    rueidisaside.CacheAsideClient
	keyPrefix string
	clientTTL time.Duration
}

// NewRueidisAsideCache connects with client-side caching enabled.
// clientTTL bounds how long a local copy is served; cacheSizeMB is the
// local cache size per connection.
func NewRueidisAsideCache[T any](
	ctx context.Context,
	opts RedisOptions,
	clientTTL time.Duration,
	cacheSizeMB int,
) (*RueidisAsideCache[T], error) {
	co := opts.clientOption()
	co.CacheSizeEachConn = cacheSizeMB * 1024 * 1024

	client, err := rueidisaside.NewClient(rueidisaside.ClientOption{ClientOption: co})
	if err != nil {
		return nil, connectError("redis-aside", err)
	}
	if err := ping(ctx, client.Client()); err != nil {
		client.Close()
		return nil, connectError("redis-aside", err)
	}

	return &RueidisAsideCache[T]{
		client:    client,
		keyPrefix: opts.KeyPrefix,
		clientTTL: clientTTL,
	}, nil
}

// Get retrieves a value through the client-side cache. A miss never
// populates the key; use GetWithFetch for that.
func (r *RueidisAsideCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	val, err := r.client.Get(
		ctx,
		r.clientTTL,
		r.keyPrefix+key,
		func(ctx context.Context, key string) (string, error) {
			return "", ErrCacheMiss
		},
	)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return zero, ErrCacheMiss
		}
		return zero, unavailable(err)
	}
	if val == "" {
		return zero, ErrCacheMiss
	}

	return decodeValue[T](val)
}

// GetWithFetch retrieves a value using rueidisaside's cache-aside pattern.
// fetchFunc runs once per key across concurrent callers on a miss.
func (r *RueidisAsideCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	var zero T

	val, err := r.client.Get(
		ctx,
		ttl,
		r.keyPrefix+key,
		func(ctx context.Context, _ string) (string, error) {
			value, err := fetchFunc(ctx, key)
			if err != nil {
				return "", err
			}
			return encodeValue(value)
		},
	)
	if err != nil {
		return zero, err
	}

	return decodeValue[T](val)
}

// Set stores a value in Redis with TTL.
func (r *RueidisAsideCache[T]) Set(
	ctx context.Context,
	key string,
	value T,
	ttl time.Duration,
) error {
	return setJSON(ctx, r.client.Client(), r.keyPrefix+key, value, ttl)
}

// Delete removes a key from Redis; other instances drop their local copy
// through server-assisted invalidation.
func (r *RueidisAsideCache[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.keyPrefix+key); err != nil {
		return unavailable(err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RueidisAsideCache[T]) Close() error {
	r.client.Close()
	return nil
}

// Health checks if Redis is reachable.
func (r *RueidisAsideCache[T]) Health(ctx context.Context) error {
	return ping(ctx, r.client.Client())
}
