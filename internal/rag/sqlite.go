package rag

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DocumentStore persists indexed documents and their embeddings in SQLite so
// the in-memory index survives restarts.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore opens (or creates) the database at the given path.
func NewDocumentStore(dataSourceName string) (*DocumentStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &DocumentStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the underlying database handle.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}

func (s *DocumentStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS documents (
        id TEXT PRIMARY KEY,
        collection TEXT NOT NULL,
        content TEXT NOT NULL,
        embedding_json TEXT NOT NULL,
        metadata_json TEXT
    );
    CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection);
    `
	_, err := s.db.Exec(schema)
	return err
}

// Insert stores one document under the named collection.
func (s *DocumentStore) Insert(collection string, doc Document) error {
	embeddingJSON, err := json.Marshal(doc.Embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO documents (id, collection, content, embedding_json, metadata_json) VALUES (?, ?, ?, ?, ?)",
		doc.ID, collection, doc.Text, string(embeddingJSON), string(metadataJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// LoadAll returns every document stored under the named collection.
func (s *DocumentStore) LoadAll(collection string) ([]Document, error) {
	rows, err := s.db.Query(
		"SELECT id, content, embedding_json, metadata_json FROM documents WHERE collection = ?",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var embeddingJSON, metadataJSON string
		if err := rows.Scan(&doc.ID, &doc.Text, &embeddingJSON, &metadataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		if err := json.Unmarshal([]byte(embeddingJSON), &doc.Embedding); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding for %s: %w", doc.ID, err)
		}
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", doc.ID, err)
			}
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
