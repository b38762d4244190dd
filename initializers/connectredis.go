package initializers

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

func ConnectRedis() error {
	Client = redis.NewClient(&redis.Options{
		Addr:     Getenv("REDIS_ADDR", "localhost:6379"),
		Password: Getenv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	if err := Client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("redis connection establishment failed: %w", err)
	}
	return nil
}
