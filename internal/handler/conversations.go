package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/n0b0dy-ai/assistant-backend/internal/middleware"
	"github.com/n0b0dy-ai/assistant-backend/internal/model"
	"github.com/n0b0dy-ai/assistant-backend/internal/service"
	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
)

// ConversationHandler handles conversation and message endpoints backed by
// the in-memory conversation store.
type ConversationHandler struct {
	store  *service.ConversationStore
	logger *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(store *service.ConversationStore, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		store:  store,
		logger: log,
	}
}

// List handles GET /api/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": h.store.ListConversations(),
		"status":        "success",
	})
}

// Get handles GET /api/conversation/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conv, err := h.store.GetConversation(id)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation": conv,
		"messages":     h.store.GetMessages(id),
		"status":       "success",
	})
}

// ListMessages handles GET /api/messages?conversationId=...
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversationId is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages":       h.store.GetMessages(conversationID),
		"conversationId": conversationID,
		"status":         "success",
	})
}

type postMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	Sender         string `json:"sender"`
}

// PostMessage handles POST /api/messages
func (h *ConversationHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sender := model.Sender(req.Sender)
	if sender != model.SenderUser && sender != model.SenderAssistant {
		writeError(w, http.StatusBadRequest, "sender must be user or assistant")
		return
	}

	msg, conversationID := h.store.AppendMessage(req.ConversationID, req.Content, sender)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":        msg,
		"conversationId": conversationID,
		"status":         "success",
	})
}

// Search handles GET /api/search?q=...
func (h *ConversationHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results := h.store.Search(query)
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"query":   query,
		"total":   len(results),
		"status":  "success",
	})
}
