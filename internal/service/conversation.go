// Package service holds the application logic between handlers and storage.
package service

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/n0b0dy-ai/assistant-backend/internal/model"
	"github.com/n0b0dy-ai/assistant-backend/pkg/metrics"
)

// ErrConversationNotFound reports a lookup for an unknown conversation id.
var ErrConversationNotFound = errors.New("conversation not found")

// titleMaxLen is how much of the first message becomes the conversation title.
const titleMaxLen = 50

// ConversationStore keeps conversations and their messages in memory. It
// stands in for a real chat database and ships with seeded demo threads.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations []model.Conversation
	messages      map[string][]model.Message
}

// NewConversationStore returns an empty store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		messages: make(map[string][]model.Message),
	}
}

// SeedDemoData loads two fixture conversations so the UI and search have
// content to show on a fresh start.
func (s *ConversationStore) SeedDemoData() {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := time.Now().Add(-48 * time.Hour)

	s.messages["conv_001"] = []model.Message{
		{ID: "msg_001", Content: "Xin chào! Bạn có thể giúp tôi học tiếng Anh không?", Sender: model.SenderUser, Timestamp: base},
		{ID: "msg_002", Content: "Chào bạn! Tất nhiên rồi, mình rất vui được giúp bạn học tiếng Anh. Bạn muốn bắt đầu từ đâu?", Sender: model.SenderAssistant, Timestamp: base.Add(time.Minute)},
		{ID: "msg_003", Content: "Tôi muốn luyện ngữ pháp cơ bản trước.", Sender: model.SenderUser, Timestamp: base.Add(2 * time.Minute)},
	}
	s.messages["conv_002"] = []model.Message{
		{ID: "msg_004", Content: "MongoDB là gì vậy?", Sender: model.SenderUser, Timestamp: base.Add(24 * time.Hour)},
		{ID: "msg_005", Content: "MongoDB là một cơ sở dữ liệu NoSQL lưu trữ dữ liệu dưới dạng document JSON. Nó rất phù hợp cho dữ liệu phi cấu trúc.", Sender: model.SenderAssistant, Timestamp: base.Add(24*time.Hour + time.Minute)},
	}

	s.conversations = []model.Conversation{
		{
			ID:           "conv_002",
			Title:        "Tìm hiểu về MongoDB",
			LastMessage:  s.messages["conv_002"][1].Content,
			Timestamp:    s.messages["conv_002"][1].Timestamp,
			MessageCount: len(s.messages["conv_002"]),
		},
		{
			ID:           "conv_001",
			Title:        "Học tiếng Anh cơ bản",
			LastMessage:  s.messages["conv_001"][2].Content,
			Timestamp:    s.messages["conv_001"][2].Timestamp,
			MessageCount: len(s.messages["conv_001"]),
		},
	}
}

// ListConversations returns conversation summaries, newest activity first.
func (s *ConversationStore) ListConversations() []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// GetConversation returns a single conversation summary.
func (s *ConversationStore) GetConversation(id string) (model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv, nil
		}
	}
	return model.Conversation{}, ErrConversationNotFound
}

// GetMessages returns the conversation's messages in insertion order. An
// unknown id yields an empty slice so new threads render as empty, not 404.
func (s *ConversationStore) GetMessages(conversationID string) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[conversationID]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}

// AppendMessage stores the message under the conversation, creating it on
// first use. Create-or-append happens under one lock so concurrent first
// messages cannot produce duplicate conversations. It returns the stored
// message and the conversation id (freshly generated when empty).
func (s *ConversationStore) AppendMessage(conversationID, content string, sender model.Sender) (model.Message, string) {
	msg := model.Message{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    sender,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	s.messages[conversationID] = append(s.messages[conversationID], msg)

	updated := false
	for i := range s.conversations {
		if s.conversations[i].ID == conversationID {
			s.conversations[i].LastMessage = content
			s.conversations[i].Timestamp = msg.Timestamp
			s.conversations[i].MessageCount = len(s.messages[conversationID])
			conv := s.conversations[i]
			copy(s.conversations[1:i+1], s.conversations[:i])
			s.conversations[0] = conv
			updated = true
			break
		}
	}
	if !updated {
		conv := model.Conversation{
			ID:           conversationID,
			Title:        deriveTitle(content),
			LastMessage:  content,
			Timestamp:    msg.Timestamp,
			MessageCount: 1,
		}
		s.conversations = append([]model.Conversation{conv}, s.conversations...)
	}

	metrics.MessagesTotal.WithLabelValues(string(sender)).Inc()
	return msg, conversationID
}

// Search returns messages whose content contains the query, case-insensitive,
// newest first. An empty query matches nothing.
func (s *ConversationStore) Search(query string) []model.SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []model.SearchResult{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []model.SearchResult{}
	for _, conv := range s.conversations {
		for _, msg := range s.messages[conv.ID] {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, model.SearchResult{
					ConversationID:    conv.ID,
					ConversationTitle: conv.Title,
					MessageID:         msg.ID,
					Content:           msg.Content,
					Sender:            msg.Sender,
					Timestamp:         msg.Timestamp,
				})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})
	return results
}

// Totals reports conversation and message counts for health reporting.
func (s *ConversationStore) Totals() (conversations, messages int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conversations = len(s.conversations)
	for _, msgs := range s.messages {
		messages += len(msgs)
	}
	return conversations, messages
}

func deriveTitle(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= titleMaxLen {
		return string(runes)
	}
	return string(runes[:titleMaxLen]) + "..."
}
