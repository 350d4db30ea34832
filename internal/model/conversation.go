// Package model defines data structures for the assistant backend.
package model

import (
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Conversation summarizes a message thread.
type Conversation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastMessage  string    `json:"lastMessage"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"messageCount"`
}

// Message is a single stored chat message.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchResult is a message matched by a content search, with its
// conversation identified for navigation.
type SearchResult struct {
	ConversationID    string    `json:"conversationId"`
	ConversationTitle string    `json:"conversationTitle"`
	MessageID         string    `json:"messageId"`
	Content           string    `json:"content"`
	Sender            Sender    `json:"sender"`
	Timestamp         time.Time `json:"timestamp"`
}
