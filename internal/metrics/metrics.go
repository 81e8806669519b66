package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDurationSeconds tracks transport latency.
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"path", "method", "status_code"},
	)

	// GenerationDurationSeconds tracks AI content generation duration per
	// operation (explanation, test, learning_plan).
	GenerationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_generation_duration_seconds",
			Help:    "AI content generation duration in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation_type"},
	)

	// GenerationTotal counts generation requests by outcome.
	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_generation_total",
			Help: "Total AI generation requests.",
		},
		[]string{"operation_type", "status"},
	)

	// CacheOperationsTotal counts cache operations by result.
	CacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total cache operations.",
		},
		[]string{"operation", "result"},
	)

	// CompletionCallsTotal counts completion endpoint calls by outcome.
	CompletionCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_calls_total",
			Help: "Total completion endpoint calls.",
		},
		[]string{"status"},
	)

	// CompletionRetriesTotal counts retry attempts against the endpoint.
	CompletionRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "completion_retries_total",
			Help: "Total completion endpoint retries.",
		},
	)
)

// Register is called once in main().
func Register() {
	prometheus.MustRegister(
		HTTPRequestDurationSeconds,
		GenerationDurationSeconds,
		GenerationTotal,
		CacheOperationsTotal,
		CompletionCallsTotal,
		CompletionRetriesTotal,
	)
}

// Handler exposes /metrics for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures HTTP latency for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		HTTPRequestDurationSeconds.
			WithLabelValues(pathLabel(r), r.Method, strconv.Itoa(rec.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

// pathLabel prefers the matched chi route pattern over the raw URL path
// so parameterized routes do not explode label cardinality.
func pathLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
