package rag

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
)

// fakeEmbedder returns deterministic vectors keyed by text, and can be told
// to fail on a specific input.
type fakeEmbedder struct {
	vectors map[string][]float32
	failOn  string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == f.failOn && f.failOn != "" {
		return nil, fmt.Errorf("%w: forced failure", ErrEmbedding)
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) Name() string { return "fake" }

func newTestIndex(t *testing.T, embedder Embedder) *Index {
	t.Helper()
	idx, err := NewIndex(embedder, nil, "test", logger.NewNop())
	if err != nil {
		t.Fatalf("NewIndex returned error: %v", err)
	}
	return idx
}

func TestIndexAddAndSearch(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"cats":  {1, 0, 0},
		"dogs":  {0.9, 0.1, 0},
		"stars": {0, 0, 1},
		"query": {1, 0, 0},
	}}
	idx := newTestIndex(t, embedder)

	ids, err := idx.Add(context.Background(), []string{"cats", "dogs", "stars"}, nil)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d ids, want 3", len(ids))
	}

	matches, err := idx.Search(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Document.Text != "cats" {
		t.Fatalf("closest match is %q, want cats", matches[0].Document.Text)
	}
	if matches[0].Distance > 1e-6 {
		t.Fatalf("identical vectors should have distance ~0, got %f", matches[0].Distance)
	}
	if matches[1].Distance < matches[0].Distance {
		t.Fatal("matches are not sorted by ascending distance")
	}
}

func TestIndexSearchEmpty(t *testing.T) {
	idx := newTestIndex(t, &fakeEmbedder{})

	matches, err := idx.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if matches == nil {
		t.Fatal("empty index should yield empty slice, not nil")
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches from empty index, want 0", len(matches))
	}
}

func TestIndexAddGeneratedMetadata(t *testing.T) {
	idx := newTestIndex(t, &fakeEmbedder{})

	_, err := idx.Add(context.Background(), []string{"hello"}, []map[string]any{{"source": "unit"}})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	matches, err := idx.Search(context.Background(), "hello", 1)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	meta := matches[0].Document.Metadata
	if meta["source"] != "unit" {
		t.Fatalf("caller metadata lost: %v", meta)
	}
	if meta["added_at"] == nil {
		t.Fatal("added_at not generated")
	}
	if meta["text_length"] != len("hello") {
		t.Fatalf("text_length = %v, want %d", meta["text_length"], len("hello"))
	}
}

func TestIndexAddEmbedFailureAbortsBatch(t *testing.T) {
	embedder := &fakeEmbedder{failOn: "bad"}
	idx := newTestIndex(t, embedder)

	ids, err := idx.Add(context.Background(), []string{"good", "bad", "never"}, nil)
	if err == nil {
		t.Fatal("expected error when embedding fails")
	}
	if len(ids) != 1 {
		t.Fatalf("got %d ids before failure, want 1", len(ids))
	}
	if stats := idx.Stats(); stats.TotalDocuments != 1 {
		t.Fatalf("got %d documents indexed, want 1", stats.TotalDocuments)
	}
}

func TestIndexAddValidation(t *testing.T) {
	idx := newTestIndex(t, &fakeEmbedder{})

	if _, err := idx.Add(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for empty texts")
	}
	if _, err := idx.Add(context.Background(), []string{"a", "b"}, []map[string]any{{}}); err == nil {
		t.Fatal("expected error for mismatched metadatas length")
	}
}

func TestIndexAddChunked(t *testing.T) {
	idx := newTestIndex(t, &fakeEmbedder{})

	text := strings.Repeat("a", 25)
	ids, err := idx.AddChunked(context.Background(), "notes.txt", text, 10, 2)
	if err != nil {
		t.Fatalf("AddChunked returned error: %v", err)
	}
	// ceil((25-2)/(10-2)) windows.
	if len(ids) != 3 {
		t.Fatalf("got %d chunks, want 3", len(ids))
	}

	matches, err := idx.Search(context.Background(), "a", 10)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	for _, m := range matches {
		meta := m.Document.Metadata
		if meta["source"] != "notes.txt" {
			t.Fatalf("source = %v", meta["source"])
		}
		if meta["total_chunks"] != 3 {
			t.Fatalf("total_chunks = %v", meta["total_chunks"])
		}
	}
}

func TestIndexStats(t *testing.T) {
	idx := newTestIndex(t, &fakeEmbedder{})

	stats := idx.Stats()
	if stats.TotalDocuments != 0 || stats.CollectionName != "test" {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if _, err := idx.Add(context.Background(), []string{"one", "two"}, nil); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if stats := idx.Stats(); stats.TotalDocuments != 2 {
		t.Fatalf("got %d documents, want 2", stats.TotalDocuments)
	}
}
