package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplanationKeyDeterministic(t *testing.T) {
	t.Parallel()

	a := ExplanationKey("Algebra ", "math", 8, "")
	b := ExplanationKey("algebra", "Math", 8, "")

	assert.Equal(t, a, b, "case and whitespace differences must hash identically")
	assert.True(t, strings.HasPrefix(a, "explanation:"))
}

func TestExplanationKeyDistinguishesFields(t *testing.T) {
	t.Parallel()

	base := ExplanationKey("algebra", "math", 8, "")

	assert.NotEqual(t, base, ExplanationKey("geometry", "math", 8, ""))
	assert.NotEqual(t, base, ExplanationKey("algebra", "physics", 8, ""))
	assert.NotEqual(t, base, ExplanationKey("algebra", "math", 9, ""))
	assert.NotEqual(t, base, ExplanationKey("algebra", "math", 8, "exam prep"))
}

func TestExplanationKeyAbsentContextEqualsEmpty(t *testing.T) {
	t.Parallel()

	// Callers pass "" when the optional context was not supplied; a request
	// with an explicitly empty context must produce the same key.
	assert.Equal(t,
		ExplanationKey("algebra", "math", 8, ""),
		ExplanationKey("algebra", "math", 8, "   "),
	)
}

func TestTestKeyEmbedsSubjectSegment(t *testing.T) {
	t.Parallel()

	key := TestKey("Mathematics", []string{"Fractions", "Decimals"}, 5, 10, []string{"multiple_choice"})

	parts := strings.SplitN(key, ":", 3)
	require.Len(t, parts, 3)
	assert.Equal(t, "test", parts[0])
	assert.Equal(t, "mathematics", parts[1])
	assert.Len(t, parts[2], 64)
}

func TestTestKeyTopicOrderIrrelevant(t *testing.T) {
	t.Parallel()

	a := TestKey("math", []string{"fractions", "decimals"}, 5, 10, []string{"true_false", "multiple_choice"})
	b := TestKey("math", []string{"Decimals", " fractions"}, 5, 10, []string{"multiple_choice", "true_false"})

	assert.Equal(t, a, b)
}

func TestLearningPlanKeyScopedToStudent(t *testing.T) {
	t.Parallel()

	a := LearningPlanKey("student-a", []string{"math"}, "NMT", 7)
	b := LearningPlanKey("student-b", []string{"math"}, "NMT", 7)

	assert.True(t, strings.HasPrefix(a, "learning_plan:student-a:"))
	assert.True(t, strings.HasPrefix(b, "learning_plan:student-b:"))
	assert.NotEqual(t, a, b)
}

func TestConversationKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "conversation:u1:c1", ConversationKey("u1", "c1"))
}
