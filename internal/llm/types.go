package llm

import (
	"context"
	"errors"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role/content pair sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries the messages plus sampling parameters for one
// generation. The model is fixed by client configuration.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

func (r *CompletionRequest) Validate() error {
	if len(r.Messages) == 0 {
		return errors.New("at least one message is required")
	}

	for i, m := range r.Messages {
		if m.Role != RoleSystem && m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("invalid role %q in messages[%d]", m.Role, i)
		}
		if m.Content == "" && m.Role != RoleSystem {
			return fmt.Errorf("content is required for messages[%d]", i)
		}
	}

	if r.Temperature < 0 || r.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2")
	}

	return nil
}

// StreamChunk is one delta of streamed generated text.
type StreamChunk struct {
	Delta        string `json:"delta"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// StreamResult carries either a chunk or a terminal error.
type StreamResult struct {
	Chunk *StreamChunk
	Err   error
}

// Client is the completion endpoint consumed by the orchestrators.
// Complete returns the generated text or a classified failure; retrying
// happens inside the client per its configured policy.
type Client interface {
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
	CompleteStream(ctx context.Context, req *CompletionRequest) (<-chan StreamResult, error)
	HealthCheck(ctx context.Context) bool
}
