package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// RedisOptions locates the Redis server shared by the redis cache types
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix is prepended to every key, e.g. "stravaexport:csv:"
	KeyPrefix string
}

func (o RedisOptions) clientOption() rueidis.ClientOption {
	return rueidis.ClientOption{
		InitAddress: []string{o.Addr},
		Password:    o.Password,
		SelectDB:    o.DB,
	}
}

func ping(ctx context.Context, client rueidis.Client) error {
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

func setJSON[T any](
	ctx context.Context,
	client rueidis.Client,
	key string,
	value T,
	ttl time.Duration,
) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	cmd := client.B().Set().Key(key).Value(encoded).Ex(ttl).Build()
	if err := client.Do(ctx, cmd).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

func connectError(kind string, err error) error {
	return fmt.Errorf("failed to connect %s cache: %w", kind, err)
}
