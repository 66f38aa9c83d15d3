package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Cache is the key/value store behind alert listings and idempotent replays
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPattern removes every key matching a glob pattern
	DeleteByPattern(ctx context.Context, pattern string) error
}

var ErrCacheMiss = errors.New("cache miss")

// GetJSON decodes the value stored under key into dest
func GetJSON(ctx context.Context, c Cache, key string, dest interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("cached value under %s is not valid JSON: %w", key, err)
	}
	return nil
}

// SetJSON stores value under key encoded as JSON
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}
	return c.Set(ctx, key, raw, ttl)
}

// TTL converts a configured number of seconds
func TTL(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
