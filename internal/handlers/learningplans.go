package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"tutorgate-ai/internal/model"
	"tutorgate-ai/internal/service"
	"tutorgate-ai/pkg/logging"
)

// LearningPlanHandler serves plan generation and gap analysis.
type LearningPlanHandler struct {
	Service *service.PlanService
}

func NewLearningPlanHandler(svc *service.PlanService) *LearningPlanHandler {
	return &LearningPlanHandler{Service: svc}
}

type planEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// Generate handles POST /learning-plans/generate.
func (h *LearningPlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req model.LearningPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	plan, err := h.Service.GeneratePlan(ctx, &req)
	if err != nil {
		logger.Error("learning plan generation failed", zap.Error(err))
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, planEnvelope{Success: true, Data: plan})
}

// AnalyzeGaps handles POST /learning-plans/analyze-gaps.
func (h *LearningPlanHandler) AnalyzeGaps(w http.ResponseWriter, r *http.Request) {
	logger := logging.L(r.Context())

	var req model.AnalyzeGapsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	gaps := h.Service.AnalyzeKnowledgeGaps(&req)

	writeJSON(w, http.StatusOK, planEnvelope{
		Success: true,
		Data: map[string]any{
			"gaps":       gaps,
			"total_gaps": len(gaps),
		},
	})
}
