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
	"tutorgate-ai/internal/model"
	"tutorgate-ai/internal/prompt"
)

// DefaultMaxConversationMessages bounds the context window kept per
// conversation.
const DefaultMaxConversationMessages = 10

// Cached envelope for one conversation.
type conversationState struct {
	Messages  []model.ConversationMessage `json:"messages"`
	UpdatedAt string                      `json:"updated_at"`
}

// ConversationService keeps short-lived conversation context in the
// cache. History is best-effort: an expired or missing conversation is
// simply empty.
type ConversationService struct {
	llm         llm.Client
	cache       cache.Store
	logger      *zap.Logger
	maxMessages int
	now         func() time.Time
}

func NewConversationService(client llm.Client, store cache.Store, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		llm:         client,
		cache:       store,
		logger:      logger.Named("conversation"),
		maxMessages: DefaultMaxConversationMessages,
		now:         time.Now,
	}
}

// Ask answers a follow-up question against the stored conversation
// context, then records both turns. The optional topic tags the question
// for RecentTopics.
func (s *ConversationService) Ask(ctx context.Context, userID, conversationID, question, topic string) (string, error) {
	history := s.History(ctx, userID, conversationID)

	start := time.Now()
	answer, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Messages:    prompt.Conversational(question, history),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	observeGeneration("conversation", start, err)
	if err != nil {
		return "", fmt.Errorf("generate follow-up: %w", err)
	}

	var metadata map[string]string
	if topic != "" {
		metadata = map[string]string{"topic": topic}
	}
	s.AddMessage(ctx, userID, conversationID, llm.RoleUser, question, metadata)
	s.AddMessage(ctx, userID, conversationID, llm.RoleAssistant, answer, nil)

	return answer, nil
}

// History returns the stored messages for a conversation, oldest first.
func (s *ConversationService) History(ctx context.Context, userID, conversationID string) []model.ConversationMessage {
	state := s.load(ctx, userID, conversationID)
	return state.Messages
}

// AddMessage appends one turn and rewrites the window, evicting the
// oldest messages beyond the limit. Each write refreshes the TTL.
func (s *ConversationService) AddMessage(ctx context.Context, userID, conversationID, role, content string, metadata map[string]string) {
	state := s.load(ctx, userID, conversationID)

	state.Messages = append(state.Messages, model.ConversationMessage{
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Metadata:  metadata,
	})
	if len(state.Messages) > s.maxMessages {
		state.Messages = state.Messages[len(state.Messages)-s.maxMessages:]
	}
	state.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	key := fingerprint.ConversationKey(userID, conversationID)
	b, err := json.Marshal(state)
	if err != nil {
		s.logger.Warn("encode conversation state", zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, b, cache.ConversationTTL)
}

// Clear drops a conversation's context.
func (s *ConversationService) Clear(ctx context.Context, userID, conversationID string) bool {
	return s.cache.Delete(ctx, fingerprint.ConversationKey(userID, conversationID))
}

// RecentTopics lists the distinct topics tagged in message metadata,
// most recent first.
func (s *ConversationService) RecentTopics(ctx context.Context, userID, conversationID string) []string {
	messages := s.load(ctx, userID, conversationID).Messages

	seen := make(map[string]bool)
	var topics []string
	for i := len(messages) - 1; i >= 0; i-- {
		topic, ok := messages[i].Metadata["topic"]
		if !ok || topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true
		topics = append(topics, topic)
	}
	return topics
}

func (s *ConversationService) load(ctx context.Context, userID, conversationID string) conversationState {
	key := fingerprint.ConversationKey(userID, conversationID)

	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return conversationState{}
	}

	var state conversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn("discarding undecodable conversation state", zap.String("key", key))
		return conversationState{}
	}
	return state
}
