// Package cache provides the best-effort key/value store used for
// generated content. A cache outage degrades to "always regenerate",
// never to a failure of the caller's request.
package cache

import (
	"context"
	"time"
)

// Domain TTL defaults, overridable per call.
const (
	ExplanationTTL  = 24 * time.Hour
	TestTemplateTTL = time.Hour
	LearningPlanTTL = 24 * time.Hour
	ConversationTTL = time.Hour
)

// Store is the cache contract shared by all backends. Every operation is
// best-effort: Get answers absent on any backend error, Set and Delete
// report success without ever failing the caller's flow.
type Store interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl. A non-positive ttl is a no-op.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool

	// Delete removes a single key.
	Delete(ctx context.Context, key string) bool

	// DeleteByPrefix removes every key matching a glob-style pattern and
	// returns how many were deleted.
	DeleteByPrefix(ctx context.Context, pattern string) int

	// HealthCheck reports whether the backing store is reachable.
	HealthCheck(ctx context.Context) bool
}
