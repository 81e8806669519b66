package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tutorgate-ai/internal/handlers"
	"tutorgate-ai/internal/metrics"
	"tutorgate-ai/internal/middleware"
)

// Handlers bundles the endpoint dependencies for SetupRouter.
type Handlers struct {
	Explanations  *handlers.ExplanationHandler
	Tests         *handlers.TestHandler
	LearningPlans *handlers.LearningPlanHandler
	Conversations *handlers.ConversationHandler
	Admin         *handlers.AdminHandler
	Health        *handlers.HealthHandler
}

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, h Handlers, requestTimeout time.Duration) {

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(middleware.MaxBodySize(512 * 1024)) // 512 KB max body

	// routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Route("/explanations", func(r chi.Router) {
			r.Post("/", h.Explanations.Generate)
			r.Get("/examples", h.Explanations.Examples)
		})
		r.Post("/tests", h.Tests.Generate)
		r.Route("/learning-plans", func(r chi.Router) {
			r.Post("/generate", h.LearningPlans.Generate)
			r.Post("/analyze-gaps", h.LearningPlans.AnalyzeGaps)
		})
		r.Route("/conversations/{userID}/{conversationID}", func(r chi.Router) {
			r.Post("/ask", h.Conversations.Ask)
			r.Get("/", h.Conversations.History)
			r.Delete("/", h.Conversations.Clear)
		})
		r.Post("/admin/cache/invalidate", h.Admin.InvalidateCache)
	})

	// streaming holds the connection open, so it sits outside the
	// request timeout group
	r.Post("/explanations/stream", h.Explanations.Stream)

	r.Get("/health", h.Health.Health)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
