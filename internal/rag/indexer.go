package rag

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/seance/internal/archive"
)

// DefaultIndexOptions returns sensible defaults for indexing
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		BatchSize:    50,
		ForceReindex: false,
		SkipExisting: true,
	}
}

// IndexEntries embeds archive entries and stores them in the vector store.
// Entries with empty content are skipped. It returns the number of entries
// written.
func IndexEntries(
	ctx context.Context,
	entries []archive.Entry,
	embedder Embedder,
	vectorStore VectorStore,
	opts IndexOptions,
) (int, error) {
	if embedder == nil {
		return 0, fmt.Errorf("embedder cannot be nil")
	}
	if vectorStore == nil {
		return 0, fmt.Errorf("vector store cannot be nil")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIndexOptions().BatchSize
	}

	toIndex := make([]archive.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Content != "" {
			toIndex = append(toIndex, e)
		}
	}
	if len(toIndex) == 0 {
		return 0, nil
	}

	if opts.ForceReindex {
		if err := vectorStore.Delete(ctx, entryIDs(toIndex)); err != nil {
			return 0, fmt.Errorf("failed to delete existing entries: %w", err)
		}
	} else if opts.SkipExisting {
		toIndex = filterNewEntries(ctx, toIndex, vectorStore)
	}

	indexed := 0
	for batchStart := 0; batchStart < len(toIndex); batchStart += opts.BatchSize {
		batchEnd := min(batchStart+opts.BatchSize, len(toIndex))
		batch := toIndex[batchStart:batchEnd]

		texts := make([]string, len(batch))
		for i, entry := range batch {
			texts[i] = entry.Content
		}

		embeddings, err := embedder.Embed(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("failed to generate embeddings for batch starting at %d: %w", batchStart, err)
		}
		if len(embeddings) != len(batch) {
			return indexed, fmt.Errorf("%w: got %d embeddings for %d entries", ErrEmbeddingFailed, len(embeddings), len(batch))
		}

		records := make([]EntryRecord, len(batch))
		for _, emb := range embeddings {
			if emb.Index < 0 || emb.Index >= len(batch) {
				return indexed, fmt.Errorf("%w: embedding index %d out of range", ErrEmbeddingFailed, emb.Index)
			}
			entry := batch[emb.Index]
			records[emb.Index] = EntryRecord{
				EntryID:   int64(entry.ID),
				Path:      entry.Path,
				Content:   entry.Content,
				Embedding: emb.Embedding,
			}
		}

		if err := vectorStore.Insert(ctx, records); err != nil {
			return indexed, fmt.Errorf("failed to insert batch starting at %d: %w", batchStart, err)
		}

		if err := vectorStore.Flush(ctx); err != nil {
			return indexed, fmt.Errorf("failed to flush batch starting at %d: %w", batchStart, err)
		}

		indexed += len(batch)
	}

	return indexed, nil
}

// filterNewEntries removes entries that already exist in the vector store.
// If the existence check fails every entry is kept.
func filterNewEntries(ctx context.Context, entries []archive.Entry, vectorStore VectorStore) []archive.Entry {
	existing, err := vectorStore.Query(ctx, entryIDs(entries))
	if err != nil {
		return entries
	}

	fresh := make([]archive.Entry, 0, len(entries))
	for _, e := range entries {
		if !existing[int64(e.ID)] {
			fresh = append(fresh, e)
		}
	}
	return fresh
}

func entryIDs(entries []archive.Entry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = int64(e.ID)
	}
	return ids
}
