package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreTTL(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	defer s.Close()

	ctx := context.Background()
	key := "explanation:abc"
	val := []byte("hello")

	if !s.Set(ctx, key, val, 20*time.Millisecond) {
		t.Fatalf("Set failed")
	}

	got, hit := s.Get(ctx, key)
	if !hit {
		t.Fatalf("expected hit immediately after Set")
	}
	if string(got) != "hello" {
		t.Fatalf("expected 'hello', got %q", got)
	}

	// Wait for TTL to expire
	time.Sleep(30 * time.Millisecond)

	if _, hit = s.Get(ctx, key); hit {
		t.Fatalf("expected miss after TTL expiry")
	}
}

func TestMemoryStoreSetRejectsNonPositiveTTL(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Close()

	if s.Set(context.Background(), "k", []byte("v"), 0) {
		t.Fatalf("expected Set with ttl=0 to report failure")
	}
	if s.Len() != 0 {
		t.Fatalf("expected no entries, got %d", s.Len())
	}
}

func TestMemoryStoreDeleteByPrefix(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Close()

	ctx := context.Background()
	s.Set(ctx, "test:math:aaa", []byte("1"), time.Minute)
	s.Set(ctx, "test:math:bbb", []byte("2"), time.Minute)
	s.Set(ctx, "test:physics:ccc", []byte("3"), time.Minute)
	s.Set(ctx, "explanation:ddd", []byte("4"), time.Minute)

	deleted := s.DeleteByPrefix(ctx, "test:*math*")
	if deleted != 2 {
		t.Fatalf("expected 2 deletions, got %d", deleted)
	}
	if _, hit := s.Get(ctx, "test:physics:ccc"); !hit {
		t.Fatalf("physics template should survive math invalidation")
	}
	if _, hit := s.Get(ctx, "explanation:ddd"); !hit {
		t.Fatalf("explanation key should survive test invalidation")
	}
}

func TestMemoryStoreHealthCheck(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Close()

	if !s.HealthCheck(context.Background()) {
		t.Fatalf("memory store should always be healthy")
	}
}
