// Package service holds the generation orchestrators: each one checks
// the cache, renders a prompt, invokes the upstream model through the
// retry-aware client, structures the output, and writes the result back
// to the cache. Cache failures never fail a request.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tutorgate-ai/internal/cache"
	"tutorgate-ai/internal/fingerprint"
	"tutorgate-ai/internal/llm"
	"tutorgate-ai/internal/metrics"
	"tutorgate-ai/internal/model"
	"tutorgate-ai/internal/prompt"
	"tutorgate-ai/internal/structurer"
)

// Sampling parameters per flow.
const (
	defaultTemperature  = 0.7
	defaultMaxTokens    = 2000
	examplesTemperature = 0.8
	examplesMaxTokens   = 1500
)

// ExplanationService generates structured explanations with write-through
// caching.
type ExplanationService struct {
	llm    llm.Client
	cache  cache.Store
	logger *zap.Logger
}

func NewExplanationService(client llm.Client, store cache.Store, logger *zap.Logger) *ExplanationService {
	return &ExplanationService{llm: client, cache: store, logger: logger.Named("explanation")}
}

// Explain returns a structured explanation, served from cache when an
// identical request was answered within the explanation TTL.
func (s *ExplanationService) Explain(ctx context.Context, req *model.ExplanationRequest, useCache bool) (*model.Explanation, error) {
	key := fingerprint.ExplanationKey(req.Topic, req.Subject, req.StudentLevel, req.Context)

	if useCache {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var exp model.Explanation
			if err := json.Unmarshal(raw, &exp); err == nil {
				s.logger.Info("explanation cache hit", zap.String("topic", req.Topic))
				return &exp, nil
			}
			s.logger.Warn("discarding undecodable cached explanation", zap.String("key", key))
		}
	}

	s.logger.Info("generating explanation",
		zap.String("topic", req.Topic),
		zap.String("subject", req.Subject),
		zap.Int("student_level", req.StudentLevel),
	)

	start := time.Now()
	content, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Messages:    prompt.Explanation(req.Topic, req.Subject, req.StudentLevel, req.Context),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	observeGeneration("explanation", start, err)
	if err != nil {
		return nil, fmt.Errorf("generate explanation: %w", err)
	}

	exp := structurer.Explanation(content, req.StudentLevel)

	if useCache {
		if b, err := json.Marshal(exp); err == nil {
			s.cache.Set(ctx, key, b, cache.ExplanationTTL)
		}
	}
	return &exp, nil
}

// ExplainStream starts a streaming explanation. Streams bypass the cache
// entirely: deltas are forwarded as they arrive.
func (s *ExplanationService) ExplainStream(ctx context.Context, req *model.ExplanationRequest) (<-chan llm.StreamResult, error) {
	s.logger.Info("streaming explanation",
		zap.String("topic", req.Topic),
		zap.String("subject", req.Subject),
	)
	return s.llm.CompleteStream(ctx, &llm.CompletionRequest{
		Messages:    prompt.Explanation(req.Topic, req.Subject, req.StudentLevel, req.Context),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
}

// GenerateExamples produces up to numExamples standalone worked examples.
func (s *ExplanationService) GenerateExamples(ctx context.Context, topic, subject string, studentLevel, numExamples int, extraContext string) ([]model.Example, error) {
	start := time.Now()
	content, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Messages:    prompt.Examples(topic, subject, studentLevel, numExamples, extraContext),
		Temperature: examplesTemperature,
		MaxTokens:   examplesMaxTokens,
	})
	observeGeneration("examples", start, err)
	if err != nil {
		return nil, fmt.Errorf("generate examples: %w", err)
	}

	examples := structurer.ExtractExamples(content)
	if len(examples) > numExamples {
		examples = examples[:numExamples]
	}
	return examples, nil
}

func observeGeneration(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.GenerationDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	metrics.GenerationTotal.WithLabelValues(operation, status).Inc()
}
