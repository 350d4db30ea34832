package handler

import (
	"encoding/json"
	"net/http"

	"github.com/n0b0dy-ai/assistant-backend/internal/middleware"
	"github.com/n0b0dy-ai/assistant-backend/internal/model"
	"github.com/n0b0dy-ai/assistant-backend/internal/service"
	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
)

// AIHandler handles assistant response endpoints.
type AIHandler struct {
	assistant *service.Assistant
	store     *service.ConversationStore
	logger    *logger.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(assistant *service.Assistant, store *service.ConversationStore, log *logger.Logger) *AIHandler {
	return &AIHandler{
		assistant: assistant,
		store:     store,
		logger:    log,
	}
}

type aiResponseRequest struct {
	Message        string `json:"message"`
	Mode           string `json:"mode"`
	ConversationID string `json:"conversationId"`
}

// Respond handles POST /api/ai-response. The user message and the reply are
// both recorded in the conversation store.
func (h *AIHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req aiResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Mode == "" {
		writeError(w, http.StatusBadRequest, "mode is required")
		return
	}

	history := h.store.GetMessages(req.ConversationID)
	_, conversationID := h.store.AppendMessage(req.ConversationID, req.Message, model.SenderUser)

	reply := h.assistant.Respond(r.Context(), req.Message, req.Mode, history)
	h.store.AppendMessage(conversationID, reply.Text, model.SenderAssistant)

	writeJSON(w, http.StatusOK, map[string]any{
		"response":       reply.Text,
		"mode":           reply.Mode,
		"fallback":       reply.Fallback,
		"conversationId": conversationID,
		"status":         "success",
	})
}

// TestKeys handles GET /api/test-keys, smoke-testing every mode's
// credentials.
func (h *AIHandler) TestKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.assistant.TestCredentials(r.Context()))
}
