package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes a Redis connection.
type Options struct {
	URL      string
	PoolSize int
	Timeout  time.Duration
}

// New creates a Redis client from a redis:// URL and verifies it with PING.
func New(ctx context.Context, o Options) (*redis.Client, error) {
	opts, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	if o.PoolSize > 0 {
		opts.PoolSize = o.PoolSize
	}
	if o.Timeout > 0 {
		opts.DialTimeout = o.Timeout
		opts.ReadTimeout = o.Timeout
		opts.WriteTimeout = o.Timeout
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
