package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/n0b0dy-ai/assistant-backend/internal/llm"
	"github.com/n0b0dy-ai/assistant-backend/internal/model"
	"github.com/n0b0dy-ai/assistant-backend/internal/service"
	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
)

type stubGenerator struct {
	reply string
	fail  bool
}

func (s *stubGenerator) Generate(context.Context, string, string) (string, error) {
	if s.fail {
		return "", fmt.Errorf("%w: unavailable", llm.ErrUpstream)
	}
	return s.reply, nil
}

func (s *stubGenerator) TestCredentials(context.Context, string) bool {
	return !s.fail
}

func newTestRouter(gen llm.Generator) (*chi.Mux, *service.ConversationStore) {
	log := logger.NewNop()
	store := service.NewConversationStore()
	store.SeedDemoData()
	assistant := service.NewAssistant(gen, nil, log)

	conversationHandler := NewConversationHandler(store, log)
	aiHandler := NewAIHandler(assistant, store, log)
	healthHandler := NewHealthHandler(store)

	r := chi.NewRouter()
	r.Get("/api/health", healthHandler.Health)
	r.Get("/api/conversations", conversationHandler.List)
	r.Get("/api/conversation/{id}", conversationHandler.Get)
	r.Get("/api/messages", conversationHandler.ListMessages)
	r.Post("/api/messages", conversationHandler.PostMessage)
	r.Get("/api/search", conversationHandler.Search)
	r.Post("/api/ai-response", aiHandler.Respond)
	r.Get("/api/test-keys", aiHandler.TestKeys)
	return r, store
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListConversations(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodGet, "/api/conversations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Conversations []model.Conversation `json:"conversations"`
		Status        string               `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Conversations) != 2 {
		t.Fatalf("got %d conversations, want 2", len(resp.Conversations))
	}
	if resp.Status != "success" {
		t.Fatalf("status = %q", resp.Status)
	}
}

func TestGetConversation(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodGet, "/api/conversation/conv_001", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Conversation model.Conversation `json:"conversation"`
		Messages     []model.Message    `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Conversation.ID != "conv_001" {
		t.Fatalf("conversation id = %q", resp.Conversation.ID)
	}
	if len(resp.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(resp.Messages))
	}
}

func TestGetConversationNotFound(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodGet, "/api/conversation/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListMessagesRequiresConversationID(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodGet, "/api/messages", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostMessage(t *testing.T) {
	r, store := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodPost, "/api/messages", map[string]string{
		"content": "a brand new thread",
		"sender":  "user",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message        model.Message `json:"message"`
		ConversationID string        `json:"conversationId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ConversationID == "" {
		t.Fatal("conversation id not returned")
	}
	if got := len(store.GetMessages(resp.ConversationID)); got != 1 {
		t.Fatalf("got %d stored messages, want 1", got)
	}
}

func TestPostMessageEmptyContent(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodPost, "/api/messages", map[string]string{"content": "", "sender": "user"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostMessageMissingSender(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodPost, "/api/messages", map[string]string{"content": "hello"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodGet, "/api/search?q=mongodb", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Results []model.SearchResult `json:"results"`
		Query   string               `json:"query"`
		Total   int                  `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Results) != 2 {
		t.Fatalf("got total %d with %d results, want 2", resp.Total, len(resp.Results))
	}
	if resp.Query != "mongodb" {
		t.Fatalf("query echoed as %q", resp.Query)
	}
}

func TestSearchEmptyQueryEndpoint(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodGet, "/api/search", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Results []model.SearchResult `json:"results"`
		Total   int                  `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 0 || len(resp.Results) != 0 {
		t.Fatalf("empty query matched %d results", resp.Total)
	}
}

func TestAIResponseStoresBothTurns(t *testing.T) {
	r, store := newTestRouter(&stubGenerator{reply: "the answer is 4"})

	rec := doRequest(t, r, http.MethodPost, "/api/ai-response", map[string]string{
		"message": "what is 2+2",
		"mode":    "math",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Response       string `json:"response"`
		Mode           string `json:"mode"`
		Fallback       bool   `json:"fallback"`
		ConversationID string `json:"conversationId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Response != "the answer is 4" {
		t.Fatalf("response = %q", resp.Response)
	}
	if resp.Fallback {
		t.Fatal("successful reply flagged as fallback")
	}

	msgs := store.GetMessages(resp.ConversationID)
	if len(msgs) != 2 {
		t.Fatalf("got %d stored messages, want user turn and reply", len(msgs))
	}
	if msgs[0].Sender != model.SenderUser || msgs[1].Sender != model.SenderAssistant {
		t.Fatalf("unexpected senders: %s, %s", msgs[0].Sender, msgs[1].Sender)
	}
}

func TestAIResponseFallback(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{fail: true})

	rec := doRequest(t, r, http.MethodPost, "/api/ai-response", map[string]string{
		"message": "what is 2+2",
		"mode":    "math",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Response string `json:"response"`
		Fallback bool   `json:"fallback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Fallback {
		t.Fatal("degraded reply not flagged as fallback")
	}
	if !strings.Contains(resp.Response, "'what is 2+2'") {
		t.Fatalf("fallback does not echo the question: %q", resp.Response)
	}
}

func TestTestKeysEndpoint(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodGet, "/api/test-keys", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var results map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, mode := range llm.Modes {
		if !results[mode] {
			t.Fatalf("mode %s reported unhealthy: %v", mode, results)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{reply: "ok"})

	rec := doRequest(t, r, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Status             string `json:"status"`
		Timestamp          string `json:"timestamp"`
		TotalConversations int    `json:"total_conversations"`
		TotalMessages      int    `json:"total_messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.TotalConversations != 2 || resp.TotalMessages != 5 {
		t.Fatalf("totals = %d/%d, want 2/5", resp.TotalConversations, resp.TotalMessages)
	}
	if resp.Timestamp == "" {
		t.Fatal("timestamp missing")
	}
}
