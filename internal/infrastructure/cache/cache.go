package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskmaster/todo/internal/infrastructure/config"
	"github.com/taskmaster/todo/internal/ports"
)

const statsKeyPrefix = "todo:stats:"

// RedisStatsCache keeps todo statistics in Redis as JSON with a TTL.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatsCache connects to Redis and verifies the connection.
func NewRedisStatsCache(cfg config.RedisConfig) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetAddr(), err)
	}

	return NewRedisStatsCacheWithClient(client, cfg.StatsTTL), nil
}

// NewRedisStatsCacheWithClient wraps an existing client.
func NewRedisStatsCacheWithClient(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

func statsKey(userID string) string {
	return statsKeyPrefix + userID
}

// Get returns the cached stats for userID, or nil on a miss.
func (c *RedisStatsCache) Get(ctx context.Context, userID string) (*ports.TodoStats, error) {
	data, err := c.client.Get(ctx, statsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stats cache: %w", err)
	}

	var stats ports.TodoStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode cached stats: %w", err)
	}
	return &stats, nil
}

// Set stores stats for userID until the TTL expires.
func (c *RedisStatsCache) Set(ctx context.Context, userID string, stats *ports.TodoStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write stats cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached stats for userID.
func (c *RedisStatsCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, statsKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *RedisStatsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}

// NoopStatsCache never stores anything, so every Get is a miss.
type NoopStatsCache struct{}

func (NoopStatsCache) Get(context.Context, string) (*ports.TodoStats, error) { return nil, nil }
func (NoopStatsCache) Set(context.Context, string, *ports.TodoStats) error { return nil }
func (NoopStatsCache) Invalidate(context.Context, string) error { return nil }

var (
	_ ports.StatsCache = (*RedisStatsCache)(nil)
	_ ports.StatsCache = NoopStatsCache{}
)
