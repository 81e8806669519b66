package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config selects the cache backend.
type Config struct {
	Backend         string // "redis" or anything else for memory
	CleanupInterval time.Duration
}

// New returns the configured Store backend. redisClient may be nil when
// the backend is not "redis".
func New(cfg Config, redisClient *redis.Client, logger *zap.Logger) Store {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(redisClient, logger)
	default:
		return NewMemoryStore(cfg.CleanupInterval)
	}
}
