package rag

import (
	"errors"
	"strings"
	"testing"
)

func TestChunkCount(t *testing.T) {
	cases := []struct {
		name       string
		textLen    int
		windowSize int
		overlap    int
		want       int
	}{
		{"exact single window", 100, 100, 20, 1},
		{"shorter than window", 50, 100, 20, 1},
		{"two windows", 180, 100, 20, 2},
		{"default parameters", 2600, 1000, 200, 3},
		{"no overlap", 250, 100, 0, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.Repeat("a", tc.textLen)
			chunks, err := Chunk(text, tc.windowSize, tc.overlap)
			if err != nil {
				t.Fatalf("Chunk returned error: %v", err)
			}
			if len(chunks) != tc.want {
				t.Fatalf("got %d chunks, want %d", len(chunks), tc.want)
			}
		})
	}
}

func TestChunkReconstruction(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz0123456789"
	windowSize, overlap := 10, 3
	chunks, err := Chunk(text, windowSize, overlap)
	if err != nil {
		t.Fatalf("Chunk returned error: %v", err)
	}

	rebuilt := chunks[0]
	for _, chunk := range chunks[1:] {
		rebuilt += chunk[overlap:]
	}
	if rebuilt != text {
		t.Fatalf("reconstructed %q, want %q", rebuilt, text)
	}
}

func TestChunkRuneBoundaries(t *testing.T) {
	text := strings.Repeat("học tiếng Việt ", 20)
	chunks, err := Chunk(text, 50, 10)
	if err != nil {
		t.Fatalf("Chunk returned error: %v", err)
	}
	for i, chunk := range chunks {
		if !strings.Contains(text, chunk) {
			t.Fatalf("chunk %d is not a substring, rune boundary was split", i)
		}
	}
}

func TestChunkInvalidParameters(t *testing.T) {
	cases := []struct {
		name       string
		windowSize int
		overlap    int
	}{
		{"zero window", 0, 0},
		{"negative window", -5, 0},
		{"negative overlap", 100, -1},
		{"overlap equals window", 100, 100},
		{"overlap exceeds window", 100, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Chunk("some text", tc.windowSize, tc.overlap)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestChunkDropsWhitespaceOnly(t *testing.T) {
	chunks, err := Chunk("     ", 3, 1)
	if err != nil {
		t.Fatalf("Chunk returned error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("got %d chunks from whitespace, want 0", len(chunks))
	}
}

func TestChunkEmptyText(t *testing.T) {
	chunks, err := Chunk("", 100, 20)
	if err != nil {
		t.Fatalf("Chunk returned error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("got %d chunks from empty text, want 0", len(chunks))
	}
}
