package rag

import (
	"context"
	"fmt"
	"strings"
)

// Retriever provides semantic lookup over indexed archive entries.
type Retriever struct {
	embedder    Embedder
	vectorStore VectorStore
}

// NewRetriever creates a new Retriever instance.
func NewRetriever(embedder Embedder, vectorStore VectorStore) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if vectorStore == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}

	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
	}, nil
}

// SimilarEntries returns the topK entries closest in meaning to query.
func (r *Retriever) SimilarEntries(ctx context.Context, query string, topK int) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	embeddingRecords, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddingRecords) == 0 {
		return nil, fmt.Errorf("no embedding generated for query")
	}

	matches, err := r.vectorStore.Search(ctx, embeddingRecords[0].Embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search for query: %w", err)
	}

	return matches, nil
}

// SimilarToEntry returns up to topK entries closest to the given entry's
// content, excluding the entry itself.
func (r *Retriever) SimilarToEntry(ctx context.Context, content string, entryID int64, topK int) ([]Match, error) {
	matches, err := r.SimilarEntries(ctx, content, topK+1)
	if err != nil {
		return nil, err
	}

	filtered := make([]Match, 0, topK)
	for _, m := range matches {
		if m.EntryID == entryID {
			continue
		}
		filtered = append(filtered, m)
		if len(filtered) >= topK {
			break
		}
	}
	return filtered, nil
}
