package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMiddlewarePreservesFlusher(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer lost http.Flusher behind the middleware")
		}
		w.WriteHeader(http.StatusOK)
		f.Flush()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/explanations/stream", nil))

	if !rec.Flushed {
		t.Fatal("flush did not reach the underlying writer")
	}
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	HTTPRequestDurationSeconds.Reset()

	r := chi.NewRouter()
	r.Use(Middleware)
	r.Post("/conversations/{userID}/{conversationID}/ask", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/conversations/u1/c1/ask", nil))

	if HTTPRequestDurationSeconds.DeleteLabelValues("/conversations/u1/c1/ask", http.MethodPost, "200") {
		t.Fatal("duration recorded under the raw URL path")
	}
	if !HTTPRequestDurationSeconds.DeleteLabelValues("/conversations/{userID}/{conversationID}/ask", http.MethodPost, "200") {
		t.Fatal("duration not recorded under the route pattern")
	}
}

func TestMiddlewareFallsBackToURLPathWithoutRouter(t *testing.T) {
	HTTPRequestDurationSeconds.Reset()

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if !HTTPRequestDurationSeconds.DeleteLabelValues("/nowhere", http.MethodGet, "404") {
		t.Fatal("duration not recorded under the raw URL path")
	}
}
