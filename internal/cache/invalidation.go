package cache

import (
	"context"

	"go.uber.org/zap"

	"tutorgate-ai/internal/fingerprint"
)

// Invalidator performs targeted bulk deletion of cached generations.
type Invalidator struct {
	store  Store
	logger *zap.Logger
}

// NewInvalidator creates an Invalidator over the given store.
func NewInvalidator(store Store, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{
		store:  store,
		logger: logger.Named("invalidation"),
	}
}

// InvalidateExplanations deletes cached explanations whose key contains
// the normalized topic and subject. Explanation keys are hashed, so this
// is a best-effort substring match.
func (i *Invalidator) InvalidateExplanations(ctx context.Context, topic, subject string) int {
	pattern := fingerprint.PrefixExplanation + ":*" +
		fingerprint.Normalize(topic) + "*" + fingerprint.Normalize(subject) + "*"
	deleted := i.store.DeleteByPrefix(ctx, pattern)

	i.logger.Info("invalidated explanation caches",
		zap.String("topic", topic),
		zap.String("subject", subject),
		zap.Int("deleted", deleted),
	)
	return deleted
}

// InvalidateTestTemplates deletes cached test templates, optionally
// filtered by subject. Test keys embed the normalized subject segment, so
// the filter matches directly.
func (i *Invalidator) InvalidateTestTemplates(ctx context.Context, subject string) int {
	pattern := fingerprint.PrefixTest + ":*"
	if subject != "" {
		pattern = fingerprint.PrefixTest + ":*" + fingerprint.Normalize(subject) + "*"
	}
	deleted := i.store.DeleteByPrefix(ctx, pattern)

	i.logger.Info("invalidated test template caches",
		zap.String("subject", subject),
		zap.Int("deleted", deleted),
	)
	return deleted
}

// InvalidateLearningPlans deletes all cached learning plans for one
// student. Keys for other students are never touched.
func (i *Invalidator) InvalidateLearningPlans(ctx context.Context, studentID string) int {
	pattern := fingerprint.PrefixLearningPlan + ":" + studentID + ":*"
	deleted := i.store.DeleteByPrefix(ctx, pattern)

	i.logger.Info("invalidated learning plan caches",
		zap.String("student_id", studentID),
		zap.Int("deleted", deleted),
	)
	return deleted
}

// InvalidateAll deletes everything under the service's domain prefixes.
// Administrative use only.
func (i *Invalidator) InvalidateAll(ctx context.Context) int {
	prefixes := []string{
		fingerprint.PrefixExplanation,
		fingerprint.PrefixTest,
		fingerprint.PrefixLearningPlan,
	}

	total := 0
	for _, p := range prefixes {
		total += i.store.DeleteByPrefix(ctx, p+":*")
	}

	i.logger.Info("invalidated all caches", zap.Int("deleted", total))
	return total
}
