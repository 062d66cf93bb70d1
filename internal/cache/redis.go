// Package cache is a read-through Redis cache for hot reads: directory
// lookups and published page fetches. AI settings are deliberately never
// cached; provider switches must apply on the next call.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atriumhq/atrium/internal/config"
)

const defaultTTL = 5 * time.Minute

type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(cfg config.RedisConfig, password string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: password,
		DB:       cfg.DB,

		PoolSize:        50,
		MinIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return &RedisCache{client: client, prefix: cfg.KeyPrefix}
}

// Get loads a cached value into target; found=false on a miss
func (rc *RedisCache) Get(ctx context.Context, key string, target interface{}) (bool, error) {
	data, err := rc.client.Get(ctx, rc.prefix+":"+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	return true, nil
}

func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if ttl == 0 {
		ttl = defaultTTL
	}

	if err := rc.client.Set(ctx, rc.prefix+":"+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, rc.prefix+":"+key).Err()
}

func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
