// Package cache backs the import lock and the dedup lookaside with Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisImportCache implements ports.ImportLocker and ports.DedupCache.
type RedisImportCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisImportCache creates a Redis-backed import cache.
func NewRedisImportCache(client *redis.Client, logger zerolog.Logger) *RedisImportCache {
	return &RedisImportCache{client: client, logger: logger}
}

func lockKey(userID, retailer string) string {
	return fmt.Sprintf("import:lock:%s:%s", userID, retailer)
}

// AcquireLock takes the per-(user, retailer) import lock. SetNX with a TTL so
// a crashed import can never wedge the pair forever.
func (c *RedisImportCache) AcquireLock(ctx context.Context, userID, retailer string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, lockKey(userID, retailer), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire import lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock frees the import lock.
func (c *RedisImportCache) ReleaseLock(ctx context.Context, userID, retailer string) error {
	if err := c.client.Del(ctx, lockKey(userID, retailer)).Err(); err != nil {
		return fmt.Errorf("failed to release import lock: %w", err)
	}
	return nil
}

// Seen reports whether a dedup key was recorded by a previous import.
func (c *RedisImportCache) Seen(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup key: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records a dedup key. Best-effort: the product store remains the
// source of truth when the key expires.
func (c *RedisImportCache) MarkSeen(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark dedup key: %w", err)
	}
	return nil
}
