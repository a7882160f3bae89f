// internal/common/database/redis.go
// Redis client for the match cache

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisPoolConfig holds client pool settings. Zero values keep the go-redis defaults.
type RedisPoolConfig struct {
	PoolSize  int
	OpTimeout time.Duration
}

// NewRedisClientFromURL connects to Redis and verifies the connection.
// The match cache is optional, so callers decide whether a failure is fatal.
func NewRedisClientFromURL(ctx context.Context, redisURL string, pool RedisPoolConfig) (*redis.Client, error) {
	opts, err := redisOptions(redisURL, pool)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach Redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}

func redisOptions(redisURL string, pool RedisPoolConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	if pool.PoolSize > 0 {
		opts.PoolSize = pool.PoolSize
	}
	if pool.OpTimeout > 0 {
		opts.ReadTimeout = pool.OpTimeout
		opts.WriteTimeout = pool.OpTimeout
	}

	return opts, nil
}
