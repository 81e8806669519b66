package handlers

import (
	"net/http"

	"tutorgate-ai/internal/cache"
	"tutorgate-ai/internal/llm"
	"tutorgate-ai/internal/model"
)

// HealthHandler reports service and dependency status.
type HealthHandler struct {
	LLM         llm.Client
	Cache       cache.Store
	ServiceName string
	Version     string
}

func NewHealthHandler(client llm.Client, store cache.Store, serviceName, version string) *HealthHandler {
	return &HealthHandler{LLM: client, Cache: store, ServiceName: serviceName, Version: version}
}

// Health handles GET /health. The service is degraded, not down, when
// the upstream endpoint is unreachable; cache loss alone never degrades
// it.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	endpointStatus := "unhealthy"
	if h.LLM.HealthCheck(ctx) {
		endpointStatus = "healthy"
	}
	cacheStatus := "unhealthy"
	if h.Cache.HealthCheck(ctx) {
		cacheStatus = "healthy"
	}

	overall := "degraded"
	if endpointStatus == "healthy" {
		overall = "healthy"
	}

	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:         overall,
		Service:        h.ServiceName,
		Version:        h.Version,
		EndpointStatus: endpointStatus,
		CacheStatus:    cacheStatus,
	})
}
