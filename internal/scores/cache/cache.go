// Package cache stores score reports keyed by the hash of their inputs.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-ats/internal/ats"
)

// DefaultPrefix namespaces report keys. Bump the version when the report shape changes.
const DefaultPrefix = "ats:report:v1:"

// Cache looks up and stores reports. A miss is (Report{}, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (ats.Report, bool, error)
	Set(ctx context.Context, key string, report ats.Report) error
}

// RedisCache keeps reports in Redis as JSON with a TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewRedisCache wraps client. A non-positive ttl stores keys without expiry.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: DefaultPrefix}
}

// Connect parses a redis:// URL, verifies connectivity and returns a client.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("REDIS_URL is empty")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Get returns the cached report for key.
func (c *RedisCache) Get(ctx context.Context, key string) (ats.Report, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ats.Report{}, false, nil
	}
	if err != nil {
		return ats.Report{}, false, fmt.Errorf("cache get: %w", err)
	}
	var report ats.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return ats.Report{}, false, fmt.Errorf("cache decode: %w", err)
	}
	return report, true, nil
}

// Set stores report under key.
func (c *RedisCache) Set(ctx context.Context, key string, report ats.Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
