package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	maxRequestSize = 2 * 1024 * 1024 // 2MB total JSON payload
	maxMessageSize = 512 * 1024      // 512KB per message content
)

// Wire shapes for the OpenAI-style chat completions endpoint.
type providerRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type providerChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

type providerUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type providerResponse struct {
	ID      string           `json:"id"`
	Model   string           `json:"model"`
	Choices []providerChoice `json:"choices"`
	Usage   *providerUsage   `json:"usage,omitempty"`
}

type providerErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// parseProviderError renders a short description of an upstream error
// body, structured when possible.
func parseProviderError(body []byte) string {
	var perr providerErrorResponse
	if err := json.Unmarshal(body, &perr); err == nil && perr.Error.Message != "" {
		return fmt.Sprintf("%s (%s)", perr.Error.Message, perr.Error.Type)
	}
	return truncate(string(body), 200)
}

// Complete sends one generation request and returns the generated text.
// Retryable failures are absorbed per the configured retry policy.
func (c *client) Complete(parentCtx context.Context, req *CompletionRequest) (string, error) {
	start := time.Now()

	bodyBytes, err := c.encodeRequest(req, false)
	if err != nil {
		return "", err
	}

	ctx, cancel := c.requestContext(parentCtx)
	defer cancel()

	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Response, error) {
		return c.post(ctx, bodyBytes)
	})
	if err != nil {
		c.logger.Error("completion failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return "", err
	}
	defer resp.Body.Close()

	var pResp providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pResp); err != nil {
		return "", fmt.Errorf("llmclient: decode upstream response: %w", err)
	}

	if len(pResp.Choices) == 0 {
		c.logger.Error("provider returned no choices", zap.String("model", c.cfg.Model))
		return "", fmt.Errorf("llmclient: provider returned no choices")
	}

	content := pResp.Choices[0].Message.Content

	fields := []zap.Field{
		zap.String("model", c.cfg.Model),
		zap.Duration("duration", time.Since(start)),
	}
	if pResp.Usage != nil {
		fields = append(fields,
			zap.Int("prompt_tokens", pResp.Usage.PromptTokens),
			zap.Int("completion_tokens", pResp.Usage.CompletionTokens),
		)
	}
	c.logger.Info("completion succeeded", fields...)

	return content, nil
}

// HealthCheck reports whether the completion endpoint is reachable.
func (c *client) HealthCheck(parentCtx context.Context) bool {
	ctx, cancel := context.WithTimeout(parentCtx, 5*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/models", nil)
	if err != nil {
		return false
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("endpoint health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// encodeRequest validates the request and marshals the provider payload.
func (c *client) encodeRequest(req *CompletionRequest, stream bool) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("llmclient: request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("llmclient: invalid request: %w", err)
	}

	for i, m := range req.Messages {
		if len(m.Content) > maxMessageSize {
			return nil, fmt.Errorf(
				"llmclient: message[%d] content too large (%d bytes, max %d)",
				i, len(m.Content), maxMessageSize,
			)
		}
	}

	bodyBytes, err := json.Marshal(providerRequest{
		Model:       c.cfg.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("llmclient: marshal request: %w", err)
	}

	if len(bodyBytes) > maxRequestSize {
		return nil, fmt.Errorf(
			"llmclient: request too large (%d bytes, max %d)",
			len(bodyBytes), maxRequestSize,
		)
	}

	return bodyBytes, nil
}

// requestContext applies the per-request upstream timeout.
func (c *client) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.UpstreamTimeout > 0 {
		return context.WithTimeout(parent, c.cfg.UpstreamTimeout)
	}
	return context.WithCancel(parent)
}

// post builds a fresh HTTP request for one attempt.
func (c *client) post(ctx context.Context, body []byte) (*http.Response, error) {
	url := c.cfg.BaseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llmclient: build HTTP request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(httpReq)
}

// truncate limits string length for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
