package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/n0b0dy-ai/assistant-backend/internal/middleware"
	"github.com/n0b0dy-ai/assistant-backend/internal/store"
	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
)

// RecordHandler handles the title/chat/context record endpoints. Responses
// use the {success, data|message} envelope.
type RecordHandler struct {
	store  *store.Store
	logger *logger.Logger
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(s *store.Store, log *logger.Logger) *RecordHandler {
	return &RecordHandler{
		store:  s,
		logger: log,
	}
}

func (h *RecordHandler) writeStoreError(w http.ResponseWriter, err error, action string) {
	if errors.Is(err, store.ErrNotFound) {
		writeEnvelopeError(w, http.StatusNotFound, "record not found")
		return
	}
	h.logger.Error("record operation failed",
		zap.String("action", action),
		zap.Error(err),
	)
	writeEnvelopeError(w, http.StatusInternalServerError, "failed to "+action)
}

func parseLimit(r *http.Request) int64 {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.ParseInt(l, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 0
}

type titleRequest struct {
	Title string `json:"title"`
}

// CreateTitle handles POST /api/titles
func (h *RecordHandler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateTitle(req.Title); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, err.Error())
		return
	}

	title, err := h.store.CreateTitle(r.Context(), req.Title)
	if err != nil {
		h.writeStoreError(w, err, "create title")
		return
	}
	writeEnvelope(w, http.StatusCreated, title)
}

// ListTitles handles GET /api/titles?limit=&skip=
func (h *RecordHandler) ListTitles(w http.ResponseWriter, r *http.Request) {
	var limit, skip int64
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.ParseInt(l, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if s := r.URL.Query().Get("skip"); s != "" {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil && parsed > 0 {
			skip = parsed
		}
	}

	titles, err := h.store.ListTitles(r.Context(), limit, skip)
	if err != nil {
		h.writeStoreError(w, err, "list titles")
		return
	}
	writeEnvelope(w, http.StatusOK, titles)
}

// GetTitle handles GET /api/titles/{id}
func (h *RecordHandler) GetTitle(w http.ResponseWriter, r *http.Request) {
	title, err := h.store.GetTitle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "get title")
		return
	}
	writeEnvelope(w, http.StatusOK, title)
}

// UpdateTitle handles PUT /api/titles/{id}
func (h *RecordHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateTitle(req.Title); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateTitle(r.Context(), chi.URLParam(r, "id"), req.Title); err != nil {
		h.writeStoreError(w, err, "update title")
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]string{"id_title": chi.URLParam(r, "id")})
}

// DeleteTitle handles DELETE /api/titles/{id}
func (h *RecordHandler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTitle(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "delete title")
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]string{"id_title": chi.URLParam(r, "id")})
}

type chatRequest struct {
	IDTitle string `json:"id_title"`
}

// CreateChat handles POST /api/chats
func (h *RecordHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IDTitle == "" {
		writeEnvelopeError(w, http.StatusBadRequest, "id_title is required")
		return
	}

	chat, err := h.store.CreateChat(r.Context(), req.IDTitle)
	if err != nil {
		h.writeStoreError(w, err, "create chat")
		return
	}
	writeEnvelope(w, http.StatusCreated, chat)
}

// GetChat handles GET /api/chats/{id}
func (h *RecordHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chat, err := h.store.GetChat(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "get chat")
		return
	}
	writeEnvelope(w, http.StatusOK, chat)
}

// ListChats handles GET /api/titles/{id}/chats?limit=
func (h *RecordHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	idTitle := chi.URLParam(r, "id")

	if _, err := h.store.GetTitle(r.Context(), idTitle); err != nil {
		h.writeStoreError(w, err, "list chats")
		return
	}
	chats, err := h.store.ChatsByTitle(r.Context(), idTitle, parseLimit(r))
	if err != nil {
		h.writeStoreError(w, err, "list chats")
		return
	}
	writeEnvelope(w, http.StatusOK, chats)
}

// DeleteChat handles DELETE /api/chats/{id}
func (h *RecordHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteChat(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "delete chat")
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]string{"id_chat": chi.URLParam(r, "id")})
}

type contextRequest struct {
	IDChat  string         `json:"id_chat"`
	Context map[string]any `json:"context"`
}

// CreateContext handles POST /api/contexts
func (h *RecordHandler) CreateContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IDChat == "" {
		writeEnvelopeError(w, http.StatusBadRequest, "id_chat is required")
		return
	}

	c, err := h.store.CreateContext(r.Context(), req.IDChat, req.Context)
	if err != nil {
		h.writeStoreError(w, err, "create context")
		return
	}
	writeEnvelope(w, http.StatusCreated, c)
}

// GetContext handles GET /api/contexts/{id}
func (h *RecordHandler) GetContext(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetContext(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "get context")
		return
	}
	writeEnvelope(w, http.StatusOK, c)
}

// ListContexts handles GET /api/chats/{id}/contexts?limit=
func (h *RecordHandler) ListContexts(w http.ResponseWriter, r *http.Request) {
	idChat := chi.URLParam(r, "id")

	if _, err := h.store.GetChat(r.Context(), idChat); err != nil {
		h.writeStoreError(w, err, "list contexts")
		return
	}
	contexts, err := h.store.ContextsByChat(r.Context(), idChat, parseLimit(r))
	if err != nil {
		h.writeStoreError(w, err, "list contexts")
		return
	}
	writeEnvelope(w, http.StatusOK, contexts)
}

// UpdateContext handles PUT /api/contexts/{id}
func (h *RecordHandler) UpdateContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.UpdateContext(r.Context(), chi.URLParam(r, "id"), req.Context); err != nil {
		h.writeStoreError(w, err, "update context")
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]string{"id_context": chi.URLParam(r, "id")})
}

// DeleteContext handles DELETE /api/contexts/{id}
func (h *RecordHandler) DeleteContext(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteContext(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "delete context")
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]string{"id_context": chi.URLParam(r, "id")})
}
