package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// AvailabilityCache implements ports.AvailabilityCache using Redis.
// Entries only ever hold provider answers; local fallbacks are never cached.
type AvailabilityCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewAvailabilityCache creates a new Redis-backed availability cache.
func NewAvailabilityCache(client goredis.UniversalClient) *AvailabilityCache {
	return &AvailabilityCache{
		client: client,
		prefix: "availability:",
	}
}

// Get retrieves cached slots by key.
// Returns nil, nil if the key does not exist.
func (c *AvailabilityCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis availability get: %w", err)
	}
	return val, nil
}

// Set stores slots with a TTL. A non-positive TTL skips the write.
func (c *AvailabilityCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis availability set: %w", err)
	}
	return nil
}
