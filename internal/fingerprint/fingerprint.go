// Package fingerprint derives deterministic cache keys from normalized
// request fields. Two requests that are semantically equal after
// normalization always produce the same key.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Domain prefixes used for targeted bulk invalidation.
const (
	PrefixExplanation  = "explanation"
	PrefixTest         = "test"
	PrefixLearningPlan = "learning_plan"
	PrefixConversation = "conversation"
)

// Normalize trims and lower-cases a string field. Absent optional fields
// are passed as "" so that omitted and empty hash identically.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeAll normalizes a string slice, drops empties and sorts the
// result so that input order does not affect the digest.
func NormalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Derive composes a cache key from a domain prefix and normalized fields.
func Derive(prefix string, fields map[string]any) string {
	return prefix + ":" + digest(fields)
}

// digest serializes the field set canonically and hashes it. Marshaling a
// map sorts keys lexicographically, so the encoding is order-independent
// and reproducible across processes.
func digest(fields map[string]any) string {
	normalized := make(map[string]any, len(fields))
	for k, v := range fields {
		if s, ok := v.(string); ok {
			normalized[k] = Normalize(s)
			continue
		}
		if ss, ok := v.([]string); ok {
			normalized[k] = NormalizeAll(ss)
			continue
		}
		normalized[k] = v
	}

	encoded, err := json.Marshal(normalized)
	if err != nil {
		// Only reachable with unmarshalable values, which callers never pass.
		encoded = []byte(strconv.Quote(err.Error()))
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

// ExplanationKey derives the cache key for an explanation request.
func ExplanationKey(topic, subject string, studentLevel int, context string) string {
	return Derive(PrefixExplanation, map[string]any{
		"topic":   topic,
		"subject": subject,
		"level":   studentLevel,
		"context": context,
	})
}

// TestKey derives the cache key for a test-generation request. The
// normalized subject is embedded as a literal segment so that
// subject-filtered invalidation can match it directly.
func TestKey(subject string, topics []string, difficulty, questionCount int, questionTypes []string) string {
	hash := digest(map[string]any{
		"topics":         topics,
		"difficulty":     difficulty,
		"question_count": questionCount,
		"question_types": questionTypes,
	})
	return PrefixTest + ":" + Normalize(subject) + ":" + hash
}

// LearningPlanKey derives the cache key for a learning-plan request. The
// student ID stays a literal segment so per-student invalidation can
// pattern-match it.
func LearningPlanKey(studentID string, subjects []string, examType string, planningDays int) string {
	hash := digest(map[string]any{
		"subjects":      subjects,
		"exam_type":     examType,
		"planning_days": planningDays,
	})
	return PrefixLearningPlan + ":" + strings.TrimSpace(studentID) + ":" + hash
}

// ConversationKey identifies one conversation's context window.
func ConversationKey(userID, conversationID string) string {
	return PrefixConversation + ":" + strings.TrimSpace(userID) + ":" + strings.TrimSpace(conversationID)
}
