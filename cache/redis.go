// Package cache stores chunking results in Redis keyed by a content hash, so
// the server can answer repeat requests without re-running a strategy (and
// without re-paying for model-backed boundary decisions).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"documents-chunker/chunking"
	"documents-chunker/config"
)

const keyPrefix = "chunks:"

// ResultCache is a Redis-backed cache of chunking results.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(cfg *config.RedisConfig) (*ResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ResultCache{client: client, ttl: cfg.TTL}, nil
}

// Key derives a stable cache key from the strategy, budget and content.
func Key(strategy string, maxTokens, overlap int, content string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%d:%d:", strategy, maxTokens, overlap)
	h.Write([]byte(content))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result, or nil on a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*chunking.Result, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var result chunking.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &result, nil
}

// Set stores a result under key for the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, result *chunking.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *ResultCache) Close() error {
	return c.client.Close()
}
