package cache

import (
	"context"
	"errors"
	"time"

	"checklist-api/internal/config"
	"checklist-api/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// TasksKey is the cached task list of one checklist.
func TasksKey(checklistID string) string {
	return "checklist:" + checklistID + ":tasks"
}

// ChecklistsKey is the cached checklist list of one profile.
func ChecklistsKey(profileID string) string {
	return "profile:" + profileID + ":checklists"
}

// Cache stores serialized list responses. A Cache with a nil client is a
// no-op: every read misses and writes are dropped.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing client. client may be nil.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Connect builds a client from cfg.RedisURL. When the URL is empty or Redis is
// unreachable the returned cache is disabled rather than failing startup.
func Connect(ctx context.Context, cfg *config.Config) *Cache {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	if cfg.RedisURL == "" {
		logger.Info(ctx, "Redis cache disabled (REDIS_URL not set)")
		return New(nil, ttl)
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error(ctx, "Invalid REDIS_URL", "error", err)
		return New(nil, ttl)
	}
	opts.PoolSize = cfg.RedisPoolSize
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error(ctx, "Redis ping failed; cache disabled", "error", err)
		_ = client.Close()
		return New(nil, ttl)
	}
	logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	return New(client, ttl)
}

func (c *Cache) Enabled() bool { return c != nil && c.client != nil }

// Get returns the cached bytes. (nil, false) on miss or error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get failed", "error", err, "key", key)
		return nil, false
	}
	return b, true
}

// Set stores b under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, b []byte) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set failed", "error", err, "key", key)
	}
}

// Invalidate deletes keys so the next read goes to the database.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn(ctx, "Redis invalidate failed", "error", err, "keys", keys)
	}
}

// Ping reports whether Redis is reachable. A disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
