package session

import "fmt"

// StoreType selects a session store backend.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeSQLite StoreType = "sqlite"
)

// NewStore builds a session store for the given backend.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory:
		return newMemoryStore(), nil
	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, fmt.Errorf("%w: redis store requires a client", ErrInvalidConfig)
		}
		return newRedisStore(cfg.redisClient, cfg.ttl), nil
	case StoreTypeSQLite:
		if cfg.sqlitePath == "" {
			return nil, fmt.Errorf("%w: sqlite store requires a database path", ErrInvalidConfig)
		}
		return newSQLiteStore(cfg.sqlitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, storeType)
	}
}
