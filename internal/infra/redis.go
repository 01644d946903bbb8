package infra

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a pooled Redis client and verifies connectivity with
// a short-lived ping before handing it back. A failed ping is returned as
// an error; a successful one is logged.
func NewRedisClient(addr, password string, db int, logger *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     50,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("infra.NewRedisClient: ping failed: %w", err)
	}

	logger.Info("redis connected", "addr", addr, "db", db)
	return client, nil
}

// RedisHealth reports pool and connectivity stats as a flat string map.
func RedisHealth(client *redis.Client) map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stats := make(map[string]string)
	if _, err := client.Ping(ctx).Result(); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	pool := client.PoolStats()
	stats["status"] = "up"
	stats["hits"] = fmt.Sprintf("%d", pool.Hits)
	stats["misses"] = fmt.Sprintf("%d", pool.Misses)
	stats["total_conns"] = fmt.Sprintf("%d", pool.TotalConns)
	stats["idle_conns"] = fmt.Sprintf("%d", pool.IdleConns)
	return stats
}
