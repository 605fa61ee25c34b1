package redisutil

import (
	"context"
	"fmt"

	"github.com/fastprodman/fairledger/internal/config"
	"github.com/go-redis/redis/v8"
)

// Connect opens a client for cfg and verifies it with a ping.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := Ping(ctx, client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

func Ping(ctx context.Context, client redis.Cmdable) error {
	err := client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	return nil
}
