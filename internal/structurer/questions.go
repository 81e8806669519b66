package structurer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tutorgate-ai/internal/model"
)

// ErrMalformedOutput marks generated text that could not be parsed into
// the expected structure. Callers map it to an invalid-response failure
// rather than a retryable one.
var ErrMalformedOutput = errors.New("malformed generated output")

// StripCodeFence removes a surrounding Markdown code fence, with or
// without a language tag and with or without a closing fence. Text that
// is not fenced is returned trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 2 {
		return s
	}
	inner := strings.TrimPrefix(parts[1], "json")
	return strings.TrimSpace(inner)
}

// Wire shape of one generated question before validation.
type rawQuestion struct {
	Content       string       `json:"content"`
	Options       []string     `json:"options"`
	CorrectAnswer model.Answer `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Topic         string       `json:"topic"`
}

// Questions parses raw generated text into validated questions of one
// type. Question IDs are freshly generated; questions lacking a topic are
// assigned one from topics round-robin by position. True/false questions
// with no options get the standard pair; multiple-choice questions with
// no options are rejected.
func Questions(rawText, questionType string, topics []string, difficulty int) ([]model.GeneratedQuestion, error) {
	stripped := StripCodeFence(rawText)
	if !strings.HasPrefix(stripped, "[") {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedOutput)
	}

	var items []rawQuestion
	if err := json.Unmarshal([]byte(stripped), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	questions := make([]model.GeneratedQuestion, 0, len(items))
	for i, item := range items {
		if item.Content == "" {
			return nil, fmt.Errorf("%w: question %d has no content", ErrMalformedOutput, i)
		}
		if item.CorrectAnswer.IsEmpty() {
			return nil, fmt.Errorf("%w: question %d has no correct answer", ErrMalformedOutput, i)
		}
		if item.Explanation == "" {
			return nil, fmt.Errorf("%w: question %d has no explanation", ErrMalformedOutput, i)
		}

		options := item.Options
		if len(options) == 0 {
			switch questionType {
			case model.QuestionTypeTrueFalse:
				options = []string{"True", "False"}
			case model.QuestionTypeMultipleChoice:
				return nil, fmt.Errorf("%w: question %d has no options", ErrMalformedOutput, i)
			}
		}

		topic := item.Topic
		if topic == "" && len(topics) > 0 {
			topic = topics[i%len(topics)]
		}

		questions = append(questions, model.GeneratedQuestion{
			ID:            uuid.NewString(),
			Type:          questionType,
			Content:       item.Content,
			Options:       options,
			CorrectAnswer: item.CorrectAnswer,
			Explanation:   item.Explanation,
			Difficulty:    difficulty,
			Topic:         topic,
			Points:        PointsForDifficulty(difficulty),
		})
	}
	return questions, nil
}

// PointsForDifficulty maps difficulty 1..10 to a per-question score.
func PointsForDifficulty(difficulty int) int {
	switch {
	case difficulty <= 3:
		return 1
	case difficulty <= 6:
		return 2
	default:
		return 3
	}
}
