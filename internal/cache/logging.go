package cache

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tutorgate-ai/internal/metrics"
	"tutorgate-ai/pkg/logging"
)

// LoggingStore wraps a Store with structured logging and metrics.
type LoggingStore struct {
	inner Store
}

// NewLoggingStore returns a store that logs operations and records
// cache_operations_total.
func NewLoggingStore(inner Store) Store {
	return &LoggingStore{inner: inner}
}

func (s *LoggingStore) Get(ctx context.Context, key string) ([]byte, bool) {
	start := time.Now()
	value, ok := s.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	result := "miss"
	if ok {
		result = "hit"
	}
	metrics.CacheOperationsTotal.WithLabelValues("get", result).Inc()

	logging.L(ctx).Debug("cache_get",
		zap.String("key", key),
		zap.String("domain", domainOf(key)),
		zap.String("cache_result", result),
		zap.Float64("latency_ms", latencyMs),
	)

	return value, ok
}

func (s *LoggingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	start := time.Now()
	ok := s.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	result := "ok"
	if !ok {
		result = "error"
	}
	metrics.CacheOperationsTotal.WithLabelValues("set", result).Inc()

	logging.L(ctx).Debug("cache_set",
		zap.String("key", key),
		zap.String("domain", domainOf(key)),
		zap.Duration("ttl", ttl),
		zap.String("cache_result", result),
		zap.Float64("latency_ms", latencyMs),
	)

	return ok
}

func (s *LoggingStore) Delete(ctx context.Context, key string) bool {
	ok := s.inner.Delete(ctx, key)

	result := "ok"
	if !ok {
		result = "error"
	}
	metrics.CacheOperationsTotal.WithLabelValues("delete", result).Inc()

	logging.L(ctx).Debug("cache_delete",
		zap.String("key", key),
		zap.String("cache_result", result),
	)

	return ok
}

func (s *LoggingStore) DeleteByPrefix(ctx context.Context, pattern string) int {
	deleted := s.inner.DeleteByPrefix(ctx, pattern)

	metrics.CacheOperationsTotal.WithLabelValues("delete_by_prefix", "ok").Inc()

	logging.L(ctx).Info("cache_delete_by_prefix",
		zap.String("pattern", pattern),
		zap.Int("deleted", deleted),
	)

	return deleted
}

func (s *LoggingStore) HealthCheck(ctx context.Context) bool {
	return s.inner.HealthCheck(ctx)
}

// domainOf extracts the key's domain prefix for log fields.
func domainOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
