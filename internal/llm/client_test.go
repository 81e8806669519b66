package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func closeClient(c Client) {
	if closer, ok := c.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func newTestClient(t *testing.T, baseURL string) Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "gpt-4",
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func successBody(content string) []byte {
	resp := providerResponse{
		ID:    "chatcmpl-1",
		Model: "gpt-4",
		Choices: []providerChoice{
			{
				Index:        0,
				Message:      Message{Role: RoleAssistant, Content: content},
				FinishReason: "stop",
			},
		},
		Usage: &providerUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}
	b, _ := json.Marshal(resp)
	return b
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{}, zaptest.NewLogger(t))
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}
}

func TestCompleteSuccess(t *testing.T) {
	t.Parallel()

	var gotReq providerRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(successBody("generated text"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer closeClient(client)

	got, err := client.Complete(context.Background(), &CompletionRequest{
		Messages:    []Message{{Role: RoleUser, Content: "explain fractions"}},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if got != "generated text" {
		t.Fatalf("unexpected content: %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected Authorization header: %s", gotAuth)
	}
	if gotReq.Model != "gpt-4" {
		t.Fatalf("expected configured model, got %s", gotReq.Model)
	}
	if gotReq.Stream {
		t.Fatalf("non-stream request should not set stream=true")
	}
}

func TestCompleteValidationError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server should not be called for invalid request")
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer closeClient(client)

	_, err := client.Complete(context.Background(), &CompletionRequest{})
	if err == nil || !strings.Contains(err.Error(), "invalid request") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompleteRateLimitedExhaustsRetries(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer closeClient(client)

	_, err := client.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", got)
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("exhausted error should wrap the last classified failure, got %v", err)
	}
}

func TestCompleteClientErrorShortCircuits(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer closeClient(client)

	_, err := client.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", got)
	}
	if !errors.Is(err, ErrClient) {
		t.Fatalf("expected ErrClient, got %v", err)
	}
	if errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("client error must not be reported as exhaustion: %v", err)
	}
}

func TestCompleteRecoversFromServerErrors(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(successBody("finally"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer closeClient(client)

	got, err := client.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "finally" {
		t.Fatalf("unexpected content: %q", got)
	}
	if attempts.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestCompleteConnectivityFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening

	client := newTestClient(t, srv.URL)
	defer closeClient(client)

	_, err := client.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if !errors.Is(err, ErrConnectivity) {
		t.Fatalf("expected connectivity classification, got %v", err)
	}
}

func TestBackoffDelaySchedule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
	}
	for _, tc := range cases {
		if got := backoffDelay(time.Second, tc.attempt); got != tc.want {
			t.Fatalf("backoffDelay(1s, %d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestCompleteStream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Errorf("response writer does not support flushing")
			return
		}

		chunks := []string{
			`{"choices":[{"index":0,"delta":{"content":"frac"}}]}`,
			`{"choices":[{"index":0,"delta":{"content":"tions"},"finish_reason":"stop"}]}`,
		}
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer closeClient(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.CompleteStream(ctx, &CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "explain fractions"}},
	})
	if err != nil {
		t.Fatalf("CompleteStream: %v", err)
	}

	var deltas strings.Builder
	var finishReason string

	for res := range stream {
		if res.Err != nil {
			t.Fatalf("stream error: %v", res.Err)
		}
		if res.Chunk == nil {
			continue
		}
		deltas.WriteString(res.Chunk.Delta)
		if res.Chunk.FinishReason != "" {
			finishReason = res.Chunk.FinishReason
		}
	}

	if deltas.String() != "fractions" {
		t.Fatalf("unexpected streamed content: %q", deltas.String())
	}
	if finishReason != "stop" {
		t.Fatalf("unexpected finish reason: %q", finishReason)
	}
}
