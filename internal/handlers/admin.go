package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tutorgate-ai/internal/cache"
	"tutorgate-ai/pkg/logging"
)

// AdminHandler exposes cache invalidation.
type AdminHandler struct {
	Invalidator *cache.Invalidator
}

func NewAdminHandler(inv *cache.Invalidator) *AdminHandler {
	return &AdminHandler{Invalidator: inv}
}

type invalidateRequest struct {
	Scope     string `json:"scope"` // explanations|tests|learning_plans|all
	Topic     string `json:"topic,omitempty"`
	Subject   string `json:"subject,omitempty"`
	StudentID string `json:"student_id,omitempty"`
}

// InvalidateCache handles POST /admin/cache/invalidate. Deletion is
// best-effort; the response reports how many entries were removed.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req invalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var deleted int
	switch req.Scope {
	case "explanations":
		if req.Topic == "" || req.Subject == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "topic and subject are required for explanation invalidation")
			return
		}
		deleted = h.Invalidator.InvalidateExplanations(ctx, req.Topic, req.Subject)
	case "tests":
		deleted = h.Invalidator.InvalidateTestTemplates(ctx, req.Subject)
	case "learning_plans":
		if req.StudentID == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "student_id is required for learning plan invalidation")
			return
		}
		deleted = h.Invalidator.InvalidateLearningPlans(ctx, req.StudentID)
	case "all":
		deleted = h.Invalidator.InvalidateAll(ctx)
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("unknown scope %q", req.Scope))
		return
	}

	logger.Info("cache invalidated",
		zap.String("scope", req.Scope),
		zap.Int("deleted", deleted),
	)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
