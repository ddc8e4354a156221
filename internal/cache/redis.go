package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fittrack/internal/config"
	"fittrack/internal/logger"
)

// Open connects to the Redis instance configured by R_HOST, R_PORT and
// R_PASS and checks it answers.
func Open(ctx context.Context) (*redis.Client, error) {
	host, port, password := config.RedisConfig()

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Get().WithField("addr", client.Options().Addr).Info("Connection to Redis successful")
	return client, nil
}
