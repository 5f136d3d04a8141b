package rag

import (
	"context"
)

// EntryRecord is an archive entry together with its embedding.
type EntryRecord struct {
	EntryID   int64     `json:"entry_id"`
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// Match is an archive entry returned by similarity search.
type Match struct {
	EntryID int64   `json:"entry_id"`
	Path    string  `json:"path"`
	Content string  `json:"content"`
	Score   float32 `json:"score"` // Similarity score (cosine)
}

// VectorStore defines the interface for vector storage and similarity search
// over archive entries.
type VectorStore interface {
	// Insert efficiently inserts multiple entries in a single operation
	Insert(ctx context.Context, records []EntryRecord) error

	// Flush ensures all pending data is persisted
	Flush(ctx context.Context) error

	// Search performs top-K similarity search
	Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error)

	// Query checks which entry IDs exist in the store
	// Returns a map where keys are entry IDs and values indicate existence
	Query(ctx context.Context, entryIDs []int64) (map[int64]bool, error)

	// Delete removes records by entry IDs
	Delete(ctx context.Context, entryIDs []int64) error

	// GetStats returns collection statistics (row count)
	GetStats(ctx context.Context) (map[string]string, error)

	// Close releases resources and closes connections
	Close() error
}

// IndexOptions provides configuration for archive indexing
type IndexOptions struct {
	// BatchSize determines how many entries to embed at once
	BatchSize int

	// ForceReindex will delete and re-insert entries even if they exist
	ForceReindex bool

	// SkipExisting will check if an entry already exists and skip if present
	SkipExisting bool
}
