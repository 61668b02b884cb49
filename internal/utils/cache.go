package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache keys shared between services
const (
	CourseListKey     = "courses:all"          // Full course catalog
	InstructorListKey = "accounts:instructors" // Instructor usernames
	revokedPrefix     = "session:revoked:"     // Revoked session token IDs
)

// Cache wraps an optional Redis client. A nil Cache or client turns every call into a miss.
type Cache struct {
	rdb *redis.Client
}

// NewCache returns a cache backed by rdb, which may be nil
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Enabled reports whether a Redis client is configured
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// Set stores a value in Redis with a specified TTL
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return c.rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// Delete removes keys from Redis
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// Revoke marks a session token ID as logged out until the token would have expired
func (c *Cache) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if !c.Enabled() || tokenID == "" || ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err()
}

// Revoked reports whether a session token ID was logged out
func (c *Cache) Revoked(ctx context.Context, tokenID string) (bool, error) {
	if !c.Enabled() || tokenID == "" {
		return false, nil
	}
	n, err := c.rdb.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
