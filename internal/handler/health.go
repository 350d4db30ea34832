package handler

import (
	"net/http"
	"time"

	"github.com/n0b0dy-ai/assistant-backend/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store *service.ConversationStore
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store *service.ConversationStore) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	conversations, messages := h.store.Totals()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "healthy",
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"total_conversations": conversations,
		"total_messages":      messages,
	})
}
