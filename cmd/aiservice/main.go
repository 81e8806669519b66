package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tutorgate-ai/internal/cache"
	"tutorgate-ai/internal/config"
	"tutorgate-ai/internal/handlers"
	"tutorgate-ai/internal/httpserver"
	"tutorgate-ai/internal/llm"
	"tutorgate-ai/internal/metrics"
	"tutorgate-ai/internal/service"
	"tutorgate-ai/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ai-service exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("llm_base_url", cfg.LLMBaseURL),
		zap.String("llm_model", cfg.LLMModel),
		zap.Int("max_attempts", cfg.MaxAttempts),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.RedisAddr),
		)
	}

	// ----- Cache store -----
	store := cache.New(cache.Config{Backend: cfg.CacheBackend}, redisClient, logger)
	store = cache.NewLoggingStore(store)
	invalidator := cache.NewInvalidator(store, logger)

	// ----- Completion client -----
	llmClient, err := llm.NewClient(llm.Config{
		BaseURL:         cfg.LLMBaseURL,
		APIKey:          cfg.LLMAPIKey,
		Model:           cfg.LLMModel,
		UpstreamTimeout: cfg.UpstreamTimeout,
		MaxAttempts:     cfg.MaxAttempts,
		BaseDelay:       cfg.BaseDelay,
	}, logger)
	if err != nil {
		return err
	}
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// ----- Services -----
	explanationSvc := service.NewExplanationService(llmClient, store, logger)
	testSvc := service.NewTestService(llmClient, store, logger)
	planSvc := service.NewPlanService(llmClient, store, logger)
	conversationSvc := service.NewConversationService(llmClient, store, logger)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, httpserver.Handlers{
		Explanations:  handlers.NewExplanationHandler(explanationSvc),
		Tests:         handlers.NewTestHandler(testSvc),
		LearningPlans: handlers.NewLearningPlanHandler(planSvc),
		Conversations: handlers.NewConversationHandler(conversationSvc),
		Admin:         handlers.NewAdminHandler(invalidator),
		Health:        handlers.NewHealthHandler(llmClient, store, cfg.ServiceName, cfg.ServiceVersion),
	}, requestTimeout(cfg))

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // streaming responses manage their own lifetime
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting ai-service",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.CacheBackend),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

// requestTimeout leaves headroom above the upstream budget so the
// completion client, not the router, decides when a generation has
// failed. Test generation makes one upstream call per question type, up
// to three.
func requestTimeout(cfg *config.Config) time.Duration {
	return 3*cfg.UpstreamTimeout + 5*time.Second
}
