package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
	"github.com/n0b0dy-ai/assistant-backend/pkg/metrics"
)

// Document is an immutable indexed text with its embedding and metadata.
type Document struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Embedding []float32      `json:"-"`
	Metadata  map[string]any `json:"metadata"`
}

// Match pairs a retrieved document with its distance to the query
// (1 - cosine similarity, so lower is closer).
type Match struct {
	Document Document `json:"document"`
	Distance float32  `json:"distance"`
}

// Stats describes the current index contents.
type Stats struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
}

// Index embeds documents and serves nearest-neighbor searches over them.
// Documents live in memory; writes go through the DocumentStore when one is
// configured so the index reloads on restart.
type Index struct {
	embedder   Embedder
	store      *DocumentStore
	collection string
	logger     *logger.Logger

	mu   sync.RWMutex
	docs []Document
}

// NewIndex creates an index over the named collection, loading any documents
// already persisted in the store. A nil store keeps the index ephemeral.
func NewIndex(embedder Embedder, store *DocumentStore, collection string, log *logger.Logger) (*Index, error) {
	idx := &Index{
		embedder:   embedder,
		store:      store,
		collection: collection,
		logger:     log,
	}
	if store != nil {
		docs, err := store.LoadAll(collection)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted documents: %w", err)
		}
		idx.docs = docs
		log.Info("vector index loaded",
			zap.String("collection", collection),
			zap.Int("documents", len(docs)),
		)
	}
	return idx, nil
}

// Add embeds each text and stores it with generated metadata merged over any
// caller-supplied metadata. Embedding failures abort the batch and surface to
// the caller; documents embedded before the failure remain indexed.
func (ix *Index) Add(ctx context.Context, texts []string, metadatas []map[string]any) ([]string, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts list cannot be empty")
	}
	if metadatas != nil && len(metadatas) != len(texts) {
		return nil, fmt.Errorf("metadatas length %d does not match texts length %d", len(metadatas), len(texts))
	}

	ids := make([]string, 0, len(texts))
	for i, text := range texts {
		embedding, err := ix.embedder.Embed(ctx, text)
		if err != nil {
			return ids, err
		}

		metadata := map[string]any{}
		if metadatas != nil {
			for k, v := range metadatas[i] {
				metadata[k] = v
			}
		}
		metadata["added_at"] = time.Now().UTC().Format(time.RFC3339)
		metadata["text_length"] = len(text)

		doc := Document{
			ID:        uuid.NewString(),
			Text:      text,
			Embedding: embedding,
			Metadata:  metadata,
		}

		if ix.store != nil {
			if err := ix.store.Insert(ix.collection, doc); err != nil {
				return ids, fmt.Errorf("failed to persist document: %w", err)
			}
		}

		ix.mu.Lock()
		ix.docs = append(ix.docs, doc)
		ix.mu.Unlock()

		ids = append(ids, doc.ID)
		metrics.DocumentsIndexedTotal.Inc()
	}

	ix.logger.Info("documents indexed",
		zap.Int("count", len(ids)),
		zap.String("collection", ix.collection),
	)
	return ids, nil
}

// AddChunked splits text into overlapping windows and indexes each chunk
// with source/chunk_index/total_chunks metadata.
func (ix *Index) AddChunked(ctx context.Context, source, text string, windowSize, overlap int) ([]string, error) {
	chunks, err := Chunk(text, windowSize, overlap)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	metadatas := make([]map[string]any, len(chunks))
	for i := range chunks {
		metadatas[i] = map[string]any{
			"source":       source,
			"chunk_index":  i,
			"total_chunks": len(chunks),
		}
	}
	return ix.Add(ctx, chunks, metadatas)
}

// AddFile reads a file and indexes its contents with AddChunked, using the
// base filename as the source.
func (ix *Index) AddFile(ctx context.Context, path string, windowSize, overlap int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ix.AddChunked(ctx, filepath.Base(path), string(data), windowSize, overlap)
}

// Search embeds the query and returns up to k nearest documents, closest
// first. An empty index yields an empty result, not an error.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	start := time.Now()

	ix.mu.RLock()
	empty := len(ix.docs) == 0
	ix.mu.RUnlock()
	if empty {
		return []Match{}, nil
	}

	queryEmbedding, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	ix.mu.RLock()
	matches := make([]Match, 0, len(ix.docs))
	for _, doc := range ix.docs {
		similarity, err := CosineSimilarity(queryEmbedding, doc.Embedding)
		if err != nil {
			ix.logger.Warn("skipping document with incompatible embedding",
				zap.String("document_id", doc.ID),
				zap.Error(err),
			)
			continue
		}
		matches = append(matches, Match{Document: doc, Distance: 1 - similarity})
	}
	ix.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}

	metrics.VectorSearchDuration.Observe(time.Since(start).Seconds())
	return matches, nil
}

// Stats reports the document count and collection name.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Stats{
		TotalDocuments: len(ix.docs),
		CollectionName: ix.collection,
	}
}
