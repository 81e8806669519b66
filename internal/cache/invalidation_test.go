package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"tutorgate-ai/internal/fingerprint"
)

func TestInvalidateLearningPlansScopedToStudent(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Close()
	inv := NewInvalidator(s, zaptest.NewLogger(t))

	ctx := context.Background()
	keyA := fingerprint.LearningPlanKey("studentA", []string{"math"}, "NMT", 7)
	keyA2 := fingerprint.LearningPlanKey("studentA", []string{"physics"}, "NMT", 7)
	keyB := fingerprint.LearningPlanKey("studentB", []string{"math"}, "NMT", 7)

	s.Set(ctx, keyA, []byte("a"), time.Minute)
	s.Set(ctx, keyA2, []byte("a2"), time.Minute)
	s.Set(ctx, keyB, []byte("b"), time.Minute)

	deleted := inv.InvalidateLearningPlans(ctx, "studentA")
	if deleted != 2 {
		t.Fatalf("expected 2 deletions for studentA, got %d", deleted)
	}
	if _, hit := s.Get(ctx, keyB); !hit {
		t.Fatalf("studentB's plan must not be deleted by studentA's invalidation")
	}
}

func TestInvalidateTestTemplatesBySubject(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Close()
	inv := NewInvalidator(s, zaptest.NewLogger(t))

	ctx := context.Background()
	mathKey := fingerprint.TestKey("Mathematics", []string{"fractions"}, 5, 10, []string{"multiple_choice"})
	physKey := fingerprint.TestKey("Physics", []string{"optics"}, 5, 10, []string{"multiple_choice"})

	s.Set(ctx, mathKey, []byte("m"), time.Minute)
	s.Set(ctx, physKey, []byte("p"), time.Minute)

	if deleted := inv.InvalidateTestTemplates(ctx, "Mathematics"); deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", deleted)
	}
	if _, hit := s.Get(ctx, physKey); !hit {
		t.Fatalf("physics template should survive")
	}

	// No subject filter removes the rest.
	if deleted := inv.InvalidateTestTemplates(ctx, ""); deleted != 1 {
		t.Fatalf("expected 1 deletion without filter, got %d", deleted)
	}
}

func TestInvalidateAllCoversDomainPrefixes(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Close()
	inv := NewInvalidator(s, zaptest.NewLogger(t))

	ctx := context.Background()
	s.Set(ctx, fingerprint.ExplanationKey("algebra", "math", 8, ""), []byte("e"), time.Minute)
	s.Set(ctx, fingerprint.TestKey("math", []string{"algebra"}, 5, 10, []string{"open_ended"}), []byte("t"), time.Minute)
	s.Set(ctx, fingerprint.LearningPlanKey("s1", []string{"math"}, "", 7), []byte("l"), time.Minute)
	// Conversation context is deliberately not part of the admin wipe.
	convKey := fingerprint.ConversationKey("u1", "c1")
	s.Set(ctx, convKey, []byte("c"), time.Minute)

	if deleted := inv.InvalidateAll(ctx); deleted != 3 {
		t.Fatalf("expected 3 deletions, got %d", deleted)
	}
	if _, hit := s.Get(ctx, convKey); !hit {
		t.Fatalf("conversation context should survive InvalidateAll")
	}
}
