package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"awsoramazon/backend/types"
)

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisStore keeps idempotent responses in Redis, mostly for local runs.
type RedisStore struct {
	client redisClient
	prefix string
}

func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts), prefix: "aws-or-amazon:" + keyPrefix}, nil
}

func (s *RedisStore) FindResponse(ctx context.Context, key string) (*types.StoredResponse, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}
	var stored types.StoredResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode cached response: %w", err)
	}
	return &stored, nil
}

// SaveResponse uses SETNX so the first stored response wins.
func (s *RedisStore) SaveResponse(ctx context.Context, key string, resp types.StoredResponse, ttl time.Duration) (bool, error) {
	message, err := json.Marshal(resp)
	if err != nil {
		return false, fmt.Errorf("failed to encode response: %w", err)
	}
	stored, err := s.client.SetNX(ctx, s.prefix+key, message, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to save idempotency record: %w", err)
	}
	return stored, nil
}
