package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fridge-recommender/internal/core/corpus"
	"fridge-recommender/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "fridge:generated:"

// RedisStore 以 Redis 暫存生成食譜，多個實例可共用
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 連線並確認 Redis 可用
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Generated recipe store initialized",
		zap.String("backend", "redis"),
		zap.String("addr", addr),
		zap.Duration("ttl", ttl),
	)
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Save 寫入生成食譜
func (s *RedisStore) Save(ctx context.Context, recipe *corpus.Recipe) error {
	data, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+recipe.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store recipe: %w", err)
	}
	return nil
}

// Get 讀取生成食譜
func (s *RedisStore) Get(ctx context.Context, id string) (*corpus.Recipe, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotStored
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	var recipe corpus.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}
	return &recipe, nil
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
