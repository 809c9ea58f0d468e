package database

import (
	"context"
	"fmt"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis. It returns nil, nil when no URL is
// configured so callers can fall back to in-process state.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	options, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
