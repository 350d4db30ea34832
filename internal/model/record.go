package model

import (
	"time"
)

// Title is the root of a conversation thread in the record store.
// LastUpdate is bumped whenever a descendant Chat or Context is written.
type Title struct {
	IDTitle    string    `json:"id_title" bson:"id_title"`
	Title      string    `json:"title" bson:"title"`
	CreateAt   time.Time `json:"create_at" bson:"create_at"`
	LastUpdate time.Time `json:"last_update" bson:"last_update"`
}

// Chat is owned by exactly one Title.
type Chat struct {
	IDChat   string    `json:"id_chat" bson:"id_chat"`
	IDTitle  string    `json:"id_title" bson:"id_title"`
	CreateAt time.Time `json:"create_at" bson:"create_at"`
}

// Context is an opaque JSON payload owned by exactly one Chat.
type Context struct {
	IDContext string         `json:"id_context" bson:"id_context"`
	IDChat    string         `json:"id_chat" bson:"id_chat"`
	CreateAt  time.Time      `json:"create_at" bson:"create_at"`
	Context   map[string]any `json:"context" bson:"context"`
}
