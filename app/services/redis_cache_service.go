package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/address-resolver/app/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCacheService caches resolved addresses in Redis so repeated lookups
// of the same raw text skip the provider chain entirely.
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   int64
	misses int64
}

// NewRedisCacheService connects to Redis and verifies the connection before
// returning.
func NewRedisCacheService(redisURL string, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: "addr_resolver:",
		ttl:    24 * time.Hour,
	}, nil
}

// Get fetches a resolved address from the cache.
func (rcs *RedisCacheService) Get(ctx context.Context, key string) (*models.UniqueAddress, bool, error) {
	cacheKey := rcs.prefix + key

	val, err := rcs.client.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		atomic.AddInt64(&rcs.misses, 1)
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("redis get failed", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	var result models.UniqueAddress
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		rcs.logger.Error("unmarshal cached resolution failed", zap.Error(err))
		return nil, false, err
	}

	atomic.AddInt64(&rcs.hits, 1)
	rcs.logger.Debug("redis cache hit", zap.String("key", key))
	return &result, true, nil
}

// Set stores a resolved address under its raw text.
func (rcs *RedisCacheService) Set(ctx context.Context, key string, result *models.UniqueAddress) error {
	cacheKey := rcs.prefix + key

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal resolution: %w", err)
	}

	if err := rcs.client.Set(ctx, cacheKey, data, rcs.ttl).Err(); err != nil {
		rcs.logger.Error("redis set failed", zap.Error(err), zap.String("key", cacheKey))
		return err
	}

	rcs.logger.Debug("cached resolution", zap.String("key", key))
	return nil
}

// Delete removes one key.
func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	cacheKey := rcs.prefix + key

	if err := rcs.client.Del(ctx, cacheKey).Err(); err != nil {
		rcs.logger.Error("redis delete failed", zap.Error(err), zap.String("key", cacheKey))
		return err
	}
	return nil
}

// Clear removes every cached resolution.
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	keys, err := rcs.client.Keys(ctx, rcs.prefix+"*").Result()
	if err != nil {
		return fmt.Errorf("list cache keys: %w", err)
	}

	if len(keys) > 0 {
		if err := rcs.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete cache keys: %w", err)
		}
	}

	rcs.logger.Info("cleared resolution cache", zap.Int("keys_deleted", len(keys)))
	return nil
}

// GetStats reports hit/miss counters and an item-count estimate.
func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits := atomic.LoadInt64(&rcs.hits)
	misses := atomic.LoadInt64(&rcs.misses)

	total := hits + misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	keys, err := rcs.client.Keys(ctx, rcs.prefix+"*").Result()
	totalItems := int64(0)
	if err == nil {
		totalItems = int64(len(keys))
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: totalItems,
	}, nil
}

// Exists reports whether a key is cached.
func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := rcs.client.Exists(ctx, rcs.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// GetTTL reports the remaining TTL of a key.
func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return rcs.client.TTL(ctx, rcs.prefix+key).Result()
}

// Close closes the Redis connection.
func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}

// SetTTL overrides the default entry TTL.
func (rcs *RedisCacheService) SetTTL(ttl time.Duration) {
	rcs.ttl = ttl
}
