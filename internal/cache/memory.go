package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store for development and tests. Expired
// entries are swept by a background goroutine.
type MemoryStore struct {
	mu              sync.RWMutex
	items           map[string]memoryEntry
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
	cleanupInterval time.Duration
}

// NewMemoryStore creates an in-memory store. A non-positive cleanup
// interval defaults to 5 minutes.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	s := &MemoryStore{
		items:           make(map[string]memoryEntry),
		stopCleanup:     make(chan struct{}),
		cleanupInterval: cleanupInterval,
	}

	go s.cleanupExpired()

	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	now := time.Now()
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		if e, exists := s.items[key]; exists && now.After(e.expiresAt) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}

	// Copy to decouple from caller's buffer
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	s.mu.Lock()
	s.items[key] = memoryEntry{
		value:     valueCopy,
		expiresAt: time.Now().Add(ttl),
	}
	s.mu.Unlock()

	return true
}

func (s *MemoryStore) Delete(_ context.Context, key string) bool {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return true
}

// DeleteByPrefix removes every key matching a glob pattern, mirroring the
// semantics of the Redis SCAN MATCH syntax for the patterns this service
// uses (literal segments and '*').
func (s *MemoryStore) DeleteByPrefix(_ context.Context, pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for k := range s.items {
		if matched, err := path.Match(pattern, k); err == nil && matched {
			delete(s.items, k)
			deleted++
		}
	}
	return deleted
}

func (s *MemoryStore) HealthCheck(_ context.Context) bool {
	return true
}

func (s *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for k, v := range s.items {
				if now.After(v.expiresAt) {
					delete(s.items, k)
				}
			}
			s.mu.Unlock()
		case <-s.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine. Call on shutdown or in tests.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

// Len returns the number of entries currently held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
