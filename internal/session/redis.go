package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "fittrack:"

// RedisBackend keeps the session under two fixed keys without expiry.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client, prefix: redisKeyPrefix}
}

func (r *RedisBackend) Load(ctx context.Context) (Snapshot, error) {
	values, err := r.client.MGet(ctx, r.prefix+KeyAuthToken, r.prefix+KeyUser).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Snapshot{}, fmt.Errorf("failed to read session from redis: %w", err)
	}

	var snap Snapshot
	if len(values) == 2 {
		snap.Token = redisBytes(values[0])
		snap.User = redisBytes(values[1])
	}
	return snap, nil
}

func (r *RedisBackend) Save(ctx context.Context, snap Snapshot) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		writeKey(ctx, pipe, r.prefix+KeyAuthToken, snap.Token)
		writeKey(ctx, pipe, r.prefix+KeyUser, snap.User)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write session to redis: %w", err)
	}
	return nil
}

func (r *RedisBackend) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.prefix+KeyAuthToken, r.prefix+KeyUser).Err(); err != nil {
		return fmt.Errorf("failed to clear session in redis: %w", err)
	}
	return nil
}

func writeKey(ctx context.Context, pipe redis.Pipeliner, key string, value []byte) {
	if len(value) == 0 {
		pipe.Del(ctx, key)
		return
	}
	pipe.Set(ctx, key, value, 0)
}

func redisBytes(v interface{}) []byte {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return []byte(s)
}
