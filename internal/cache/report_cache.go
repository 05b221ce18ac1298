package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storynest/internal/service"
)

// ReportCache is the redis-backed implementation of the report facade's
// cache. Entries expire by TTL; nothing ever invalidates them explicitly,
// so the TTL is the staleness bound for week and month views.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis and verifies the connection
func New(addr, password string, db int, ttl time.Duration) (*ReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ReportCache{client: client, ttl: ttl}, nil
}

// Get returns the cached report for key, or (nil, nil) on a miss.
func (c *ReportCache) Get(key string) (*service.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var report service.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, nil
}

// Set stores a report under key for the configured TTL.
func (c *ReportCache) Set(key string, report *service.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// Close releases the redis connection
func (c *ReportCache) Close() error {
	return c.client.Close()
}
