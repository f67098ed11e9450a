package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mauritsl/restapir"
)

// Cache is a thin, struct-aware wrapper around a Redis connection: string
// get/set plus JSON-marshaled struct get/set, with a consistent
// found/not-found signature instead of sentinel error checking at every call
// site.
type Cache struct {
	conn    *Connection
	isOwner bool
}

// NewCache returns a Cache backed by the default shared Redis connection.
// The underlying connection must have been initialized via OpenConnection.
func NewCache() *Cache {
	return &Cache{conn: connection}
}

// NewConnectionCache opens a new, independently-owned Redis connection and
// returns a Cache over it. Call Close when no longer needed.
func NewConnectionCache(options Options) *Cache {
	return &Cache{conn: openConnection(options), isOwner: true}
}

// Close closes the owned Redis connection, if any.
func (c *Cache) Close() error {
	if !c.isOwner || c.conn == nil {
		return nil
	}
	err := closeConnection(c.conn)
	c.conn = nil
	return err
}

func (c *Cache) keyNotFound(err error) bool {
	return err == redis.Nil
}

// Ping tests connectivity to Redis.
func (c *Cache) Ping(ctx context.Context) error {
	if c.conn == nil {
		return fmt.Errorf("redis: connection is not open")
	}
	return c.conn.Client.Ping(ctx).Err()
}

// Clear removes all keys in the current Redis database. Use with caution.
func (c *Cache) Clear(ctx context.Context) error {
	return c.conn.Client.FlushDB(ctx).Err()
}

// Set stores a string value with the given expiration; expiration <= 0
// means no expiry.
func (c *Cache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if c.conn == nil {
		return fmt.Errorf("redis: connection is not open")
	}
	return c.conn.Client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a string value. The bool return reports whether the key was
// found; a missing key is not treated as an error.
func (c *Cache) Get(ctx context.Context, key string) (bool, string, error) {
	if c.conn == nil {
		return false, "", fmt.Errorf("redis: connection is not open")
	}
	s, err := c.conn.Client.Get(ctx, key).Result()
	if c.keyNotFound(err) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, s, nil
}

// SetStruct JSON-marshals value and stores it with the given expiration.
func (c *Cache) SetStruct(ctx context.Context, key string, value any, expiration time.Duration) error {
	if c.conn == nil {
		return fmt.Errorf("redis: connection is not open")
	}
	data, err := restapir.DefaultMarshaler.Marshal(value)
	if err != nil {
		return err
	}
	return c.conn.Client.Set(ctx, key, data, expiration).Err()
}

// GetStruct retrieves a value and unmarshals it into target.
func (c *Cache) GetStruct(ctx context.Context, key string, target any) (bool, error) {
	if c.conn == nil {
		return false, fmt.Errorf("redis: connection is not open")
	}
	data, err := c.conn.Client.Get(ctx, key).Bytes()
	if c.keyNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, restapir.DefaultMarshaler.Unmarshal(data, target)
}

// Delete removes keys, ignoring keys that don't exist.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c.conn == nil {
		return fmt.Errorf("redis: connection is not open")
	}
	return c.conn.Client.Del(ctx, keys...).Err()
}
