// Package redis owns the optional Redis connection backing the report
// snapshot cache. The service runs without it; an unset REDIS_URL simply
// means every report is recomputed.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"sutura/internal/platform/config"
)

// Client embeds the go-redis client so callers get the full command surface
// plus the small lifecycle helpers below.
type Client struct {
	*redis.Client
}

// New dials Redis from configuration and verifies the connection with a
// ping before handing it out. An empty URL returns (nil, nil): caching is
// opt-in and the caller must treat a nil client as "no cache".
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
