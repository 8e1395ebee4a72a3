package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLPresence = 2 * time.Minute  // presence hints (refreshed by heartbeat)
	TTLProfile  = 10 * time.Minute // member profile snapshots
	TTLTrending = 5 * time.Minute  // trending feed page
	TTLShort    = 1 * time.Minute  // short cache for near-real-time data
	TTLDefault  = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixPresence = "presence:"
	PrefixProfile  = "profile:"
	PrefixTrending = "trending:"
	PrefixThreads  = "threads:"
)

// Service Redis cache interface
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Presence hints
	GetPresence(ctx context.Context, userID string, dest interface{}) error
	SetPresence(ctx context.Context, userID string, data interface{}) error

	// Profile snapshots
	GetProfile(ctx context.Context, userID string, dest interface{}) error
	SetProfile(ctx context.Context, userID string, data interface{}) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a Redis-backed cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a Redis client is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping tests the Redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get reads a JSON value from the cache
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set stores a JSON value in the cache
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // no Redis, skip silently
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys from the cache
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// GetPresence reads a cached presence hint
func (c *redisCache) GetPresence(ctx context.Context, userID string, dest interface{}) error {
	return c.Get(ctx, PrefixPresence+userID, dest)
}

// SetPresence stores a presence hint with the presence TTL
func (c *redisCache) SetPresence(ctx context.Context, userID string, data interface{}) error {
	return c.Set(ctx, PrefixPresence+userID, data, TTLPresence)
}

// GetProfile reads a cached member profile
func (c *redisCache) GetProfile(ctx context.Context, userID string, dest interface{}) error {
	return c.Get(ctx, PrefixProfile+userID, dest)
}

// SetProfile stores a member profile with the profile TTL
func (c *redisCache) SetProfile(ctx context.Context, userID string, data interface{}) error {
	return c.Set(ctx, PrefixProfile+userID, data, TTLProfile)
}
