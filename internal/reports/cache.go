package reports

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"sutura/internal/platform/redis"
)

// RedisCache adapts the platform Redis client to the Cache interface.
// A cache miss is reported as an empty payload without error.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps the platform client. Returns nil when the client is
// nil so callers can wire the cache unconditionally.
func NewRedisCache(client *redis.Client) *RedisCache {
	if client == nil {
		return nil
	}
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
