// Package cache хранит сгенерированные инсайты в Redis, чтобы не платить за одинаковые запросы.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskFlow/internal/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type InsightCache struct {
	client *redis.Client
	prefix string
}

func NewInsightCache(ctx context.Context, addr, password string, db int) (*InsightCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 1,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("подключение к redis: %w", err)
	}

	logger.Info("Cache: Подключение к Redis установлено", zap.String("addr", addr))
	return newInsightCache(client), nil
}

func newInsightCache(client *redis.Client) *InsightCache {
	return &InsightCache{client: client, prefix: "taskflow:"}
}

// Get: промах - ("", false, nil).
func (c *InsightCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("чтение кэша: %w", err)
	}
	return val, true, nil
}

func (c *InsightCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("запись кэша: %w", err)
	}
	return nil
}

func (c *InsightCache) Close() error {
	return c.client.Close()
}
