package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

const redisKeyPrefix = "nlq:result:"

// RedisCache is a ResponseCache backed by Redis, for deployments that
// want cache hits to survive restarts or be shared across replicas.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisClient creates a Redis client with the given address.
// Returns nil if Redis is not configured (host is empty).
func NewRedisClient(host string, port int, password string, db int) (*redis.Client, error) {
	if host == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewRedisCache wraps an existing Redis client as a ResponseCache.
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{
		client: client,
		logger: logger.Named("cache"),
	}
}

var _ ResponseCache = (*RedisCache)(nil)

// Get implements ResponseCache.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.QueryResult, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var result models.QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		// A corrupt entry is a miss, not a failure.
		c.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, redisKeyPrefix+key)
		return nil, false, nil
	}

	return &result, true, nil
}

// Set implements ResponseCache.
func (c *RedisCache) Set(ctx context.Context, key string, result *models.QueryResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cached result: %w", err)
	}

	if err := c.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
