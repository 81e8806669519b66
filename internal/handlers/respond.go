// Package handlers holds the HTTP endpoints. Handlers stay thin: decode,
// validate, call a service, map errors, encode.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"tutorgate-ai/internal/llm"
	"tutorgate-ai/internal/structurer"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// writeGenerationError maps a generation failure onto the HTTP surface.
// Transient upstream failures become 503 so callers know to retry;
// unusable output and rejected requests are not retryable and map to 4xx.
func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, structurer.ErrMalformedOutput):
		writeError(w, http.StatusUnprocessableEntity, "invalid_ai_response", "could not generate a usable result")
	case errors.Is(err, llm.ErrClient):
		writeError(w, http.StatusBadRequest, "upstream_rejected_request", "could not generate a result for this request")
	case errors.Is(err, llm.ErrRetriesExhausted),
		errors.Is(err, llm.ErrRateLimited),
		errors.Is(err, llm.ErrConnectivity),
		errors.Is(err, llm.ErrServer):
		writeError(w, http.StatusServiceUnavailable, "service_unavailable", "service temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "gateway_timeout", "generation timed out")
	default:
		writeError(w, http.StatusInternalServerError, "generation_failed", "failed to generate a result")
	}
}
