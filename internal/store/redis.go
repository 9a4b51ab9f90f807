package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "scoundrel:save:"

// RedisStore keeps each slot under the key scoundrel:save:<slot>.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the server at url (redis://host:port/db) and pings it.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Load(ctx context.Context, slot string) (string, error) {
	if err := ValidateSlot(slot); err != nil {
		return "", err
	}
	data, err := s.client.Get(ctx, redisKeyPrefix+slot).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", slot, err)
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, slot, data string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+slot, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", slot, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, slot string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if err := s.client.Del(ctx, redisKeyPrefix+slot).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", slot, err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
