package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"tutorgate-ai/pkg/logging"
)

// Recoverer converts a handler panic into a logged 500 so one bad
// request cannot take the process down.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				logging.L(r.Context()).Error("panic recovered",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal_server_error"}`))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
