package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tutorgate-ai/internal/cache"
	"tutorgate-ai/internal/handlers"
	"tutorgate-ai/internal/httpserver"
	"tutorgate-ai/internal/llm"
	"tutorgate-ai/internal/model"
	"tutorgate-ai/internal/service"
)

type stubClient struct {
	respond func(req *llm.CompletionRequest) (string, error)
	healthy bool
}

func (c *stubClient) Complete(_ context.Context, req *llm.CompletionRequest) (string, error) {
	return c.respond(req)
}

func (c *stubClient) CompleteStream(_ context.Context, req *llm.CompletionRequest) (<-chan llm.StreamResult, error) {
	content, err := c.respond(req)
	if err != nil {
		return nil, err
	}
	ch := make(chan llm.StreamResult, 2)
	ch <- llm.StreamResult{Chunk: &llm.StreamChunk{Delta: content, FinishReason: "stop"}}
	close(ch)
	return ch, nil
}

func (c *stubClient) HealthCheck(context.Context) bool { return c.healthy }

func newTestRouter(t *testing.T, client llm.Client) (*chi.Mux, cache.Store) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	var cacheStore cache.Store = store

	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, httpserver.Handlers{
		Explanations:  handlers.NewExplanationHandler(service.NewExplanationService(client, cacheStore, logger)),
		Tests:         handlers.NewTestHandler(service.NewTestService(client, cacheStore, logger)),
		LearningPlans: handlers.NewLearningPlanHandler(service.NewPlanService(client, cacheStore, logger)),
		Conversations: handlers.NewConversationHandler(service.NewConversationService(client, cacheStore, logger)),
		Admin:         handlers.NewAdminHandler(cache.NewInvalidator(cacheStore, logger)),
		Health:        handlers.NewHealthHandler(client, cacheStore, "ai-service", "test"),
	}, 5*time.Second)

	return r, cacheStore
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGenerateExplanationEndpoint(t *testing.T) {
	t.Parallel()

	client := &stubClient{respond: func(*llm.CompletionRequest) (string, error) {
		return "Fractions represent parts of a whole. Example 1: Pizza\nCut it into four slices.\n", nil
	}, healthy: true}
	router, _ := newTestRouter(t, client)

	rec := postJSON(t, router, "/explanations", model.ExplanationRequest{
		Topic:        "Fractions",
		Subject:      "math",
		StudentLevel: 6,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var exp model.Explanation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exp))
	assert.Contains(t, exp.Content, "Fractions")
	assert.Equal(t, 6, exp.Difficulty)
	require.Len(t, exp.Examples, 1)
	assert.Equal(t, "Pizza", exp.Examples[0].Title)
}

func TestGenerateExplanationValidation(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, &stubClient{})

	rec := postJSON(t, router, "/explanations", model.ExplanationRequest{
		Topic:        "Fractions",
		Subject:      "math",
		StudentLevel: 42,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "student_level")
}

func TestGenerateExplanationUpstreamUnavailable(t *testing.T) {
	t.Parallel()

	client := &stubClient{respond: func(*llm.CompletionRequest) (string, error) {
		return "", fmt.Errorf("%w after 3 attempts: %w", llm.ErrRetriesExhausted, llm.ErrRateLimited)
	}}
	router, _ := newTestRouter(t, client)

	rec := postJSON(t, router, "/explanations", model.ExplanationRequest{
		Topic:        "Fractions",
		Subject:      "math",
		StudentLevel: 6,
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "service_unavailable")
}

func TestStreamExplanationEndpoint(t *testing.T) {
	t.Parallel()

	client := &stubClient{respond: func(*llm.CompletionRequest) (string, error) {
		return "streamed delta", nil
	}}
	router, _ := newTestRouter(t, client)

	rec := postJSON(t, router, "/explanations/stream", model.ExplanationRequest{
		Topic:        "Fractions",
		Subject:      "math",
		StudentLevel: 6,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `data: {"content":"streamed delta"}`)
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"), "stream must end with [DONE]: %q", body)
}

func TestExamplesEndpoint(t *testing.T) {
	t.Parallel()

	client := &stubClient{respond: func(*llm.CompletionRequest) (string, error) {
		return "Example 1: First\nbody\n\nExample 2: Second\nbody\n", nil
	}}
	router, _ := newTestRouter(t, client)

	req := httptest.NewRequest(http.MethodGet, "/explanations/examples?topic=Fractions&subject=math&student_level=6&num_examples=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Examples []model.Example `json:"examples"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Examples, 2)
}

func TestExamplesEndpointValidation(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/explanations/examples?topic=Fractions&subject=math&student_level=99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateTestEndpointMalformedOutput(t *testing.T) {
	t.Parallel()

	client := &stubClient{respond: func(*llm.CompletionRequest) (string, error) {
		return "Sure! Here you go.", nil
	}}
	router, _ := newTestRouter(t, client)

	rec := postJSON(t, router, "/tests", model.TestRequest{
		Subject:       "Math",
		Topics:        []string{"Algebra"},
		Difficulty:    5,
		QuestionCount: 3,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_ai_response")
}

func TestGenerateTestEndpoint(t *testing.T) {
	t.Parallel()

	client := &stubClient{respond: func(*llm.CompletionRequest) (string, error) {
		return `[{"content":"What is 2+2?","options":["3","4"],"correct_answer":"4","explanation":"arithmetic","topic":"Algebra"}]`, nil
	}}
	router, _ := newTestRouter(t, client)

	rec := postJSON(t, router, "/tests", model.TestRequest{
		Subject:       "Math",
		Topics:        []string{"Algebra"},
		Difficulty:    5,
		QuestionCount: 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var test model.GeneratedTest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &test))
	assert.Equal(t, "Math: Algebra Test", test.Title)
	require.Len(t, test.Questions, 1)
	assert.Equal(t, 2, test.Questions[0].Points)
	assert.Equal(t, 70, test.PassingScore)
}

func TestAnalyzeGapsEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, &stubClient{})

	rec := postJSON(t, router, "/learning-plans/analyze-gaps", model.AnalyzeGapsRequest{
		StudentID: "student-1",
		Subjects:  []string{"Math"},
		TestResults: []model.TestResult{
			{Subject: "Math", DetailedResults: []model.QuestionResult{
				{Correct: false, Topic: "Algebra"},
				{Correct: false, Topic: "Algebra"},
			}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Gaps      []model.KnowledgeGap `json:"gaps"`
			TotalGaps int                  `json:"total_gaps"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.TotalGaps)
	assert.Equal(t, "medium", resp.Data.Gaps[0].Severity)
}

func TestGeneratePlanEndpoint(t *testing.T) {
	t.Parallel()

	client := &stubClient{respond: func(*llm.CompletionRequest) (string, error) {
		return `{"daily_tasks":[],"weekly_goals":[],"recommendations":["practice daily"]}`, nil
	}}
	router, _ := newTestRouter(t, client)

	rec := postJSON(t, router, "/learning-plans/generate", model.LearningPlanRequest{
		StudentID:    "student-1",
		StudentLevel: 8,
		Subjects:     []string{"math"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    model.LearningPlan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"practice daily"}, resp.Data.Recommendations)
}

func TestInvalidateCacheEndpoint(t *testing.T) {
	t.Parallel()

	router, store := newTestRouter(t, &stubClient{})
	ctx := context.Background()

	store.Set(ctx, "explanation:abc", []byte("x"), time.Minute)
	store.Set(ctx, "test:math:abc", []byte("x"), time.Minute)
	store.Set(ctx, "conversation:u:c", []byte("x"), time.Minute)

	rec := postJSON(t, router, "/admin/cache/invalidate", map[string]string{"scope": "all"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["deleted"], "conversation context is not part of generation caches")

	_, ok := store.Get(ctx, "conversation:u:c")
	assert.True(t, ok)
}

func TestInvalidateCacheUnknownScope(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, &stubClient{})
	rec := postJSON(t, router, "/admin/cache/invalidate", map[string]string{"scope": "everything"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, &stubClient{healthy: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.EndpointStatus)
	assert.Equal(t, "healthy", resp.CacheStatus)
}

func TestHealthEndpointDegraded(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, &stubClient{healthy: false})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestConversationEndpoints(t *testing.T) {
	t.Parallel()

	client := &stubClient{respond: func(*llm.CompletionRequest) (string, error) {
		return "a helpful answer", nil
	}}
	router, _ := newTestRouter(t, client)

	rec := postJSON(t, router, "/conversations/user-1/conv-1/ask", map[string]string{
		"question": "what is a fraction?",
		"topic":    "fractions",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a helpful answer")

	req := httptest.NewRequest(http.MethodGet, "/conversations/user-1/conv-1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		Messages     []model.ConversationMessage `json:"messages"`
		RecentTopics []string                    `json:"recent_topics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Messages, 2)
	assert.Equal(t, []string{"fractions"}, history.RecentTopics)

	req = httptest.NewRequest(http.MethodDelete, "/conversations/user-1/conv-1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "true")
}

func TestConversationAskRequiresQuestion(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, &stubClient{})
	rec := postJSON(t, router, "/conversations/user-1/conv-1/ask", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
