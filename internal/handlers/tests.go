package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"tutorgate-ai/internal/model"
	"tutorgate-ai/internal/service"
	"tutorgate-ai/pkg/logging"
)

// TestHandler serves test generation endpoints.
type TestHandler struct {
	Service *service.TestService
}

func NewTestHandler(svc *service.TestService) *TestHandler {
	return &TestHandler{Service: svc}
}

// Generate handles POST /tests.
func (h *TestHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req model.TestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	test, err := h.Service.GenerateTest(ctx, &req)
	if err != nil {
		logger.Error("test generation failed", zap.Error(err))
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, test)
}
