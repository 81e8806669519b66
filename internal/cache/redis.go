package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore implements Store on top of Redis. Backend errors are logged
// and absorbed: a miss for Get, a false for Set/Delete.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		logger: logger.Named("cache"),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("redis get failed, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	return value, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn("redis set failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *RedisStore) Delete(ctx context.Context, key string) bool {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("redis delete failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}

// DeleteByPrefix scans for keys matching a glob pattern and deletes them
// in batches. SCAN is used instead of KEYS so large keyspaces do not block
// the server.
func (s *RedisStore) DeleteByPrefix(ctx context.Context, pattern string) int {
	var (
		cursor  uint64
		deleted int
		batch   []string
	)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		n, err := s.client.Del(ctx, batch...).Result()
		if err != nil {
			s.logger.Warn("redis bulk delete failed",
				zap.String("pattern", pattern),
				zap.Error(err),
			)
		} else {
			deleted += int(n)
		}
		batch = batch[:0]
	}

	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			s.logger.Warn("redis scan failed",
				zap.String("pattern", pattern),
				zap.Error(err),
			)
			break
		}

		batch = append(batch, keys...)
		if len(batch) >= 100 {
			flush()
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	flush()

	return deleted
}

func (s *RedisStore) HealthCheck(ctx context.Context) bool {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.logger.Warn("redis health check failed", zap.Error(err))
		return false
	}
	return true
}
