package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateRecordID validates a record identifier (title, chat or context).
func ValidateRecordID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid record ID format")
	}
	return nil
}

// ValidateTitle validates a thread title.
func ValidateTitle(title string) error {
	if len(title) == 0 {
		return errors.New("title cannot be empty")
	}
	if len(title) > 256 {
		return errors.New("title exceeds maximum length")
	}
	if !utf8.ValidString(title) {
		return errors.New("title must be valid UTF-8")
	}
	return nil
}
