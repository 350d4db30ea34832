// Package rag implements document chunking, embedding, and vector retrieval.
package rag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument reports malformed chunking parameters.
var ErrInvalidArgument = errors.New("invalid chunking parameters")

// Chunk slides a window of windowSize characters across text, advancing by
// windowSize-overlap each step. The last window is truncated at the end of
// the text and no further windows are produced past it. Whitespace-only
// chunks are dropped. Offsets are in runes so multi-byte text chunks cleanly.
func Chunk(text string, windowSize, overlap int) ([]string, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidArgument, windowSize)
	}
	if overlap < 0 || overlap >= windowSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidArgument, overlap, windowSize)
	}

	runes := []rune(text)
	step := windowSize - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + windowSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
