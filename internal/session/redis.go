package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the Redis key used when none is configured.
const DefaultRedisKey = "calmora:session:" + Key

// RedisStore keeps the token under one Redis key, so several machines
// can share a session.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. An empty key means DefaultRedisKey;
// a zero ttl stores the token without expiry.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

// NewRedisStoreFromURL parses a redis:// URL and builds the client.
func NewRedisStoreFromURL(url, key string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opts), key, ttl), nil
}

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session from redis: %w", err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return s.client.Set(ctx, s.key, token, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
