package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tutorgate-ai/internal/model"
	"tutorgate-ai/internal/service"
	"tutorgate-ai/pkg/logging"
)

// ConversationHandler serves follow-up questions and conversation
// context management.
type ConversationHandler struct {
	Service *service.ConversationService
}

func NewConversationHandler(svc *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{Service: svc}
}

type askRequest struct {
	Question string `json:"question"`
	Topic    string `json:"topic,omitempty"`
}

// Ask handles POST /conversations/{userID}/{conversationID}/ask.
func (h *ConversationHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}

	answer, err := h.Service.Ask(ctx, userID, conversationID, req.Question, req.Topic)
	if err != nil {
		logger.Error("conversation follow-up failed", zap.Error(err))
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// History handles GET /conversations/{userID}/{conversationID}.
func (h *ConversationHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")

	messages := h.Service.History(ctx, userID, conversationID)
	if messages == nil {
		messages = []model.ConversationMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages":      messages,
		"recent_topics": h.Service.RecentTopics(ctx, userID, conversationID),
	})
}

// Clear handles DELETE /conversations/{userID}/{conversationID}.
func (h *ConversationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")

	cleared := h.Service.Clear(r.Context(), userID, conversationID)
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": cleared})
}
