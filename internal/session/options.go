package session

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type storeConfig struct {
	redisClient *redis.Client
	ttl         time.Duration
	sqlitePath  string
}

// StoreOption configures the store returned by NewStore.
type StoreOption func(*storeConfig)

// WithRedisClient supplies the client backing a Redis store.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithTTL sets the idle expiry for Redis-backed sessions. Zero keeps
// sessions forever.
func WithTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.ttl = ttl
	}
}

// WithSQLitePath sets the database file backing a SQLite store.
func WithSQLitePath(path string) StoreOption {
	return func(c *storeConfig) {
		c.sqlitePath = path
	}
}
