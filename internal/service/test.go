package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"tutorgate-ai/internal/cache"
	"tutorgate-ai/internal/distribute"
	"tutorgate-ai/internal/fingerprint"
	"tutorgate-ai/internal/llm"
	"tutorgate-ai/internal/model"
	"tutorgate-ai/internal/prompt"
	"tutorgate-ai/internal/structurer"
)

// TestService assembles generated tests. Question counts are split
// deterministically across the requested types and each type is
// generated in its own upstream call.
type TestService struct {
	llm    llm.Client
	cache  cache.Store
	logger *zap.Logger
}

func NewTestService(client llm.Client, store cache.Store, logger *zap.Logger) *TestService {
	return &TestService{llm: client, cache: store, logger: logger.Named("test")}
}

// GenerateTest builds a complete test for the request, served from cache
// when an identical template was generated within the test TTL.
func (s *TestService) GenerateTest(ctx context.Context, req *model.TestRequest) (*model.GeneratedTest, error) {
	key := fingerprint.TestKey(req.Subject, req.Topics, req.Difficulty, req.QuestionCount, req.QuestionTypes)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var test model.GeneratedTest
		if err := json.Unmarshal(raw, &test); err == nil {
			s.logger.Info("test cache hit", zap.String("subject", req.Subject))
			return &test, nil
		}
		s.logger.Warn("discarding undecodable cached test", zap.String("key", key))
	}

	s.logger.Info("generating test",
		zap.String("subject", req.Subject),
		zap.Strings("topics", req.Topics),
		zap.Int("question_count", req.QuestionCount),
	)

	counts, err := distribute.Split(req.QuestionCount, req.QuestionTypes)
	if err != nil {
		return nil, fmt.Errorf("distribute questions: %w", err)
	}

	questions := make([]model.GeneratedQuestion, 0, req.QuestionCount)
	for _, questionType := range req.QuestionTypes {
		count := counts[questionType]
		if count == 0 {
			continue
		}

		batch, err := s.generateQuestions(ctx, questionType, count, req)
		if err != nil {
			return nil, err
		}
		questions = append(questions, batch...)
	}

	test := &model.GeneratedTest{
		Title:        TestTitle(req.Subject, req.Topics),
		Subject:      req.Subject,
		Topics:       req.Topics,
		Questions:    questions,
		TimeLimit:    TimeLimit(len(questions), req.Difficulty),
		PassingScore: PassingScore(req.Difficulty),
	}

	if b, err := json.Marshal(test); err == nil {
		s.cache.Set(ctx, key, b, cache.TestTemplateTTL)
	}
	return test, nil
}

func (s *TestService) generateQuestions(ctx context.Context, questionType string, count int, req *model.TestRequest) ([]model.GeneratedQuestion, error) {
	start := time.Now()
	content, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Messages:    prompt.Questions(questionType, count, req.Subject, req.Topics, req.Difficulty, req.StudentLevel),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	observeGeneration("test_questions", start, err)
	if err != nil {
		return nil, fmt.Errorf("generate %s questions: %w", questionType, err)
	}

	questions, err := structurer.Questions(content, questionType, req.Topics, req.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("parse %s questions: %w", questionType, err)
	}
	return questions, nil
}

// TestTitle names a test from its subject and topic list.
func TestTitle(subject string, topics []string) string {
	switch {
	case len(topics) == 1:
		return fmt.Sprintf("%s: %s Test", subject, topics[0])
	case len(topics) <= 3:
		return fmt.Sprintf("%s: %s Test", subject, strings.Join(topics, ", "))
	default:
		return fmt.Sprintf("%s: Multiple Topics Test", subject)
	}
}

// TimeLimit suggests a duration in minutes: per-question time grows with
// difficulty, rounded to the nearest 5 minutes with a 5-minute floor.
func TimeLimit(questionCount, difficulty int) int {
	perQuestion := 1 + float64(difficulty)/5
	total := int(float64(questionCount) * perQuestion)

	limit := int(math.Round(float64(total)/5)) * 5
	if limit < 5 {
		limit = 5
	}
	return limit
}

// PassingScore suggests a passing percentage; easier tests demand more.
func PassingScore(difficulty int) int {
	switch {
	case difficulty <= 3:
		return 80
	case difficulty <= 6:
		return 70
	default:
		return 60
	}
}
