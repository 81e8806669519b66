package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"tutorgate-ai/pkg/logging"
)

// Timeout bounds each request to d. A handler still running at the
// deadline has its context cancelled and the client gets a 504; any
// late output from the abandoned handler is discarded.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			tw := &timeoutWriter{ResponseWriter: w}

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if !tw.abandon() {
					// handler already started its response
					return
				}
				logging.L(ctx).Warn("request deadline exceeded", zap.Duration("timeout", d))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				_, _ = w.Write([]byte(`{"error":"gateway_timeout"}`))
			}
		})
	}
}

// timeoutWriter serializes the race between the handler goroutine and
// the deadline response.
type timeoutWriter struct {
	http.ResponseWriter

	mu        sync.Mutex
	started   bool
	abandoned bool
}

func (w *timeoutWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.abandoned {
		return
	}
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *timeoutWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.abandoned {
		return len(b), nil
	}
	w.started = true
	return w.ResponseWriter.Write(b)
}

// abandon cuts the handler off and reports whether the 504 can still be
// written.
func (w *timeoutWriter) abandon() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return false
	}
	w.abandoned = true
	return true
}
