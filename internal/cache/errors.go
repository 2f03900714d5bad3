package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCacheMiss is returned when a key is absent or expired
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheUnavailable wraps Redis transport failures
	ErrCacheUnavailable = errors.New("cache: backend unavailable")

	// ErrInvalidValue means a stored value could not be encoded or decoded
	ErrInvalidValue = errors.New("cache: invalid value")
)

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidValue, err)
}

// Redis-backed caches store values as JSON strings.

func encodeValue[T any](value T) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", invalid(err)
	}
	return string(b), nil
}

func decodeValue[T any](val string) (T, error) {
	var value T
	if err := json.Unmarshal([]byte(val), &value); err != nil {
		var zero T
		return zero, invalid(err)
	}
	return value, nil
}

// fetchThrough is the plain cache-aside read used by caches without
// stampede protection. Fetch errors are returned and never stored.
func fetchThrough[T any](
	ctx context.Context,
	c interface {
		Get(ctx context.Context, key string) (T, error)
		Set(ctx context.Context, key string, value T, ttl time.Duration) error
	},
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := c.Get(ctx, key); err == nil {
		return value, nil
	}
	value, err := fetch(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = c.Set(ctx, key, value, ttl)
	return value, nil
}
