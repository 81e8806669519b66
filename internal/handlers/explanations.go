package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tutorgate-ai/internal/model"
	"tutorgate-ai/internal/service"
	"tutorgate-ai/pkg/logging"
)

// ExplanationHandler serves explanation generation endpoints.
type ExplanationHandler struct {
	Service *service.ExplanationService
}

func NewExplanationHandler(svc *service.ExplanationService) *ExplanationHandler {
	return &ExplanationHandler{Service: svc}
}

// Generate handles POST /explanations.
func (h *ExplanationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req model.ExplanationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	explanation, err := h.Service.Explain(ctx, &req, true)
	if err != nil {
		logger.Error("explanation generation failed", zap.Error(err))
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, explanation)
}

// Stream handles POST /explanations/stream: deltas as SSE data events,
// closed with a [DONE] sentinel.
func (h *ExplanationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req model.ExplanationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	stream, err := h.Service.ExplainStream(ctx, &req)
	if err != nil {
		logger.Error("stream setup failed", zap.Error(err))
		writeGenerationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for res := range stream {
		if res.Err != nil {
			logger.Error("stream failed", zap.Error(res.Err))
			payload, _ := json.Marshal(map[string]string{"error": "stream interrupted"})
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			return
		}
		if res.Chunk == nil || res.Chunk.Delta == "" {
			continue
		}

		payload, _ := json.Marshal(map[string]string{"content": res.Chunk.Delta})
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// Examples handles GET /explanations/examples.
func (h *ExplanationHandler) Examples(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	q := r.URL.Query()

	topic := q.Get("topic")
	subject := q.Get("subject")
	if topic == "" || subject == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "topic and subject are required")
		return
	}

	studentLevel, err := strconv.Atoi(q.Get("student_level"))
	if err != nil || studentLevel < 1 || studentLevel > 12 {
		writeError(w, http.StatusBadRequest, "invalid_request", "student_level must be between 1 and 12")
		return
	}

	numExamples := 2
	if raw := q.Get("num_examples"); raw != "" {
		numExamples, err = strconv.Atoi(raw)
		if err != nil || numExamples < 1 || numExamples > 5 {
			writeError(w, http.StatusBadRequest, "invalid_request", "num_examples must be between 1 and 5")
			return
		}
	}

	examples, err := h.Service.GenerateExamples(ctx, topic, subject, studentLevel, numExamples, q.Get("context"))
	if err != nil {
		logger.Error("example generation failed", zap.Error(err))
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.Example{"examples": examples})
}
