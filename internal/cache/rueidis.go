package cache

import (
	"context"
	"time"

	"github.com/go-authgate/stravaexport/internal/core"

	"github.com/redis/rueidis"
)

var _ core.Cache[struct{}] = (*RueidisCache[struct{}])(nil)

// RueidisCache stores JSON values in Redis without client-side caching,
// so every read is a round trip. Use it when several instances share state.
type RueidisCache[T any] struct {
	client rueidis.Client
	opts   RedisOptions
}

// NewRueidisCache connects and pings Redis
func NewRueidisCache[T any](ctx context.Context, opts RedisOptions) (*RueidisCache[T], error) {
	co := opts.clientOption()
	co.DisableCache = true

	client, err := rueidis.NewClient(co)
	if err != nil {
		return nil, connectError("redis", err)
	}
	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, connectError("redis", err)
	}
	return &RueidisCache[T]{client: client, opts: opts}, nil
}

func (r *RueidisCache[T]) key(k string) string { return r.opts.KeyPrefix + k }

func (r *RueidisCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	val, err := r.client.Do(ctx, r.client.B().Get().Key(r.key(key)).Build()).ToString()
	switch {
	case rueidis.IsRedisNil(err):
		return zero, ErrCacheMiss
	case err != nil:
		return zero, unavailable(err)
	}
	return decodeValue[T](val)
}

func (r *RueidisCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	return setJSON(ctx, r.client, r.key(key), value, ttl)
}

func (r *RueidisCache[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Do(ctx, r.client.B().Del().Key(r.key(key)).Build()).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *RueidisCache[T]) Close() error {
	r.client.Close()
	return nil
}

func (r *RueidisCache[T]) Health(ctx context.Context) error {
	return ping(ctx, r.client)
}

// GetWithFetch reads through Redis; concurrent misses each call fetch.
func (r *RueidisCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context, key string) (T, error),
) (T, error) {
	return fetchThrough[T](ctx, r, key, ttl, fetch)
}
