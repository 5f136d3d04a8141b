package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/Yates-Labs/seance/internal/archive"
)

// mockEmbedder implements Embedder for testing
type mockEmbedder struct {
	embedFunc func(ctx context.Context, texts []string) ([]EmbeddingRecord, error)
	calls     int
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	m.calls++
	if m.embedFunc != nil {
		return m.embedFunc(ctx, texts)
	}
	// Default: a simple embedding based on text length
	records := make([]EmbeddingRecord, len(texts))
	for i, text := range texts {
		records[i] = EmbeddingRecord{
			Text:      text,
			Embedding: []float32{float32(len(text)), float32(i), 1.0},
			Index:     i,
			Model:     "mock",
		}
	}
	return records, nil
}

func (m *mockEmbedder) GetModel() string  { return "mock" }
func (m *mockEmbedder) GetDimension() int { return 3 }

// mockVectorStore implements VectorStore in memory
type mockVectorStore struct {
	records    map[int64]EntryRecord
	inserts    int
	flushes    int
	deleted    []int64
	searchFunc func(ctx context.Context, queryVector []float32, topK int) ([]Match, error)
	queryErr   error
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{records: make(map[int64]EntryRecord)}
}

func (m *mockVectorStore) Insert(ctx context.Context, records []EntryRecord) error {
	m.inserts++
	for _, r := range records {
		m.records[r.EntryID] = r
	}
	return nil
}

func (m *mockVectorStore) Flush(ctx context.Context) error {
	m.flushes++
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, queryVector, topK)
	}
	matches := []Match{}
	for _, r := range m.records {
		matches = append(matches, Match{EntryID: r.EntryID, Path: r.Path, Content: r.Content, Score: 0.9})
		if len(matches) >= topK {
			break
		}
	}
	return matches, nil
}

func (m *mockVectorStore) Query(ctx context.Context, entryIDs []int64) (map[int64]bool, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	result := make(map[int64]bool)
	for _, id := range entryIDs {
		_, exists := m.records[id]
		result[id] = exists
	}
	return result, nil
}

func (m *mockVectorStore) Delete(ctx context.Context, entryIDs []int64) error {
	m.deleted = append(m.deleted, entryIDs...)
	for _, id := range entryIDs {
		delete(m.records, id)
	}
	return nil
}

func (m *mockVectorStore) GetStats(ctx context.Context) (map[string]string, error) {
	return map[string]string{"row_count": "0"}, nil
}

func (m *mockVectorStore) Close() error { return nil }

func sampleEntries() []archive.Entry {
	return []archive.Entry{
		{ID: 1, Path: "/menu/semantic/ash", Content: "Ash settles on the index."},
		{ID: 2, Path: "/menu/semantic/bell", Content: "A bell tolls for the lost gopher."},
		{ID: 3, Path: "/menu/semantic/blank", Content: ""},
		{ID: 4, Path: "/menu/semantic/cold", Content: "Cold hands type the final query."},
	}
}

func TestIndexEntries_BatchesAndSkipsEmptyContent(t *testing.T) {
	embedder := &mockEmbedder{}
	store := newMockVectorStore()

	n, err := IndexEntries(context.Background(), sampleEntries(), embedder, store, IndexOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("IndexEntries failed: %v", err)
	}

	if n != 3 {
		t.Errorf("expected 3 indexed entries, got %d", n)
	}
	if embedder.calls != 2 || store.inserts != 2 || store.flushes != 2 {
		t.Errorf("expected 2 batches, got embed=%d insert=%d flush=%d", embedder.calls, store.inserts, store.flushes)
	}
	if _, ok := store.records[3]; ok {
		t.Error("entry with empty content must not be indexed")
	}
	if rec := store.records[4]; rec.Path != "/menu/semantic/cold" || rec.Content != "Cold hands type the final query." {
		t.Errorf("record metadata not carried over: %+v", rec)
	}
}

func TestIndexEntries_SkipExisting(t *testing.T) {
	store := newMockVectorStore()
	store.records[1] = EntryRecord{EntryID: 1, Content: "already here"}

	n, err := IndexEntries(context.Background(), sampleEntries(), &mockEmbedder{}, store, DefaultIndexOptions())
	if err != nil {
		t.Fatalf("IndexEntries failed: %v", err)
	}

	if n != 2 {
		t.Errorf("expected 2 new entries, got %d", n)
	}
	if store.records[1].Content != "already here" {
		t.Error("existing entry must not be overwritten")
	}
}

func TestIndexEntries_QueryFailureIndexesEverything(t *testing.T) {
	store := newMockVectorStore()
	store.queryErr = errors.New("query unavailable")

	n, err := IndexEntries(context.Background(), sampleEntries(), &mockEmbedder{}, store, DefaultIndexOptions())
	if err != nil {
		t.Fatalf("IndexEntries failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 entries, got %d", n)
	}
}

func TestIndexEntries_ForceReindex(t *testing.T) {
	store := newMockVectorStore()
	store.records[1] = EntryRecord{EntryID: 1, Content: "stale"}

	opts := DefaultIndexOptions()
	opts.ForceReindex = true

	n, err := IndexEntries(context.Background(), sampleEntries(), &mockEmbedder{}, store, opts)
	if err != nil {
		t.Fatalf("IndexEntries failed: %v", err)
	}

	if n != 3 {
		t.Errorf("expected 3 entries, got %d", n)
	}
	if len(store.deleted) != 3 {
		t.Errorf("expected 3 deletions, got %v", store.deleted)
	}
	if store.records[1].Content != "Ash settles on the index." {
		t.Error("stale entry was not replaced")
	}
}

func TestIndexEntries_EmbeddingError(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
			return nil, ErrEmbeddingFailed
		},
	}

	_, err := IndexEntries(context.Background(), sampleEntries(), embedder, newMockVectorStore(), DefaultIndexOptions())
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Errorf("expected ErrEmbeddingFailed, got %v", err)
	}
}

func TestIndexEntries_NilDependencies(t *testing.T) {
	if _, err := IndexEntries(context.Background(), sampleEntries(), nil, newMockVectorStore(), DefaultIndexOptions()); err == nil {
		t.Error("expected error for nil embedder")
	}
	if _, err := IndexEntries(context.Background(), sampleEntries(), &mockEmbedder{}, nil, DefaultIndexOptions()); err == nil {
		t.Error("expected error for nil store")
	}
}

func TestNewRetriever(t *testing.T) {
	if _, err := NewRetriever(nil, newMockVectorStore()); err == nil {
		t.Error("expected error for nil embedder")
	}
	if _, err := NewRetriever(&mockEmbedder{}, nil); err == nil {
		t.Error("expected error for nil vector store")
	}
	if _, err := NewRetriever(&mockEmbedder{}, newMockVectorStore()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSimilarEntries(t *testing.T) {
	store := newMockVectorStore()
	var gotTopK int
	store.searchFunc = func(ctx context.Context, queryVector []float32, topK int) ([]Match, error) {
		gotTopK = topK
		return []Match{{EntryID: 2, Content: "A bell tolls for the lost gopher.", Score: 0.8}}, nil
	}

	retriever, _ := NewRetriever(&mockEmbedder{}, store)

	matches, err := retriever.SimilarEntries(context.Background(), "  funeral bells  ", 3)
	if err != nil {
		t.Fatalf("SimilarEntries failed: %v", err)
	}
	if gotTopK != 3 {
		t.Errorf("expected topK 3, got %d", gotTopK)
	}
	if len(matches) != 1 || matches[0].EntryID != 2 {
		t.Errorf("unexpected matches %+v", matches)
	}
}

func TestSimilarEntries_InvalidInput(t *testing.T) {
	retriever, _ := NewRetriever(&mockEmbedder{}, newMockVectorStore())

	if _, err := retriever.SimilarEntries(context.Background(), "   ", 3); err == nil {
		t.Error("expected error for empty query")
	}
	if _, err := retriever.SimilarEntries(context.Background(), "bells", 0); err == nil {
		t.Error("expected error for non-positive topK")
	}
}

func TestSimilarEntries_SearchError(t *testing.T) {
	store := newMockVectorStore()
	store.searchFunc = func(ctx context.Context, queryVector []float32, topK int) ([]Match, error) {
		return nil, ErrSearchFailed
	}
	retriever, _ := NewRetriever(&mockEmbedder{}, store)

	if _, err := retriever.SimilarEntries(context.Background(), "bells", 3); !errors.Is(err, ErrSearchFailed) {
		t.Errorf("expected ErrSearchFailed, got %v", err)
	}
}

func TestSimilarToEntry_ExcludesSelf(t *testing.T) {
	store := newMockVectorStore()
	var gotTopK int
	store.searchFunc = func(ctx context.Context, queryVector []float32, topK int) ([]Match, error) {
		gotTopK = topK
		return []Match{{EntryID: 2}, {EntryID: 1}, {EntryID: 4}}, nil
	}
	retriever, _ := NewRetriever(&mockEmbedder{}, store)

	matches, err := retriever.SimilarToEntry(context.Background(), "A bell tolls for the lost gopher.", 2, 2)
	if err != nil {
		t.Fatalf("SimilarToEntry failed: %v", err)
	}
	if gotTopK != 3 {
		t.Errorf("expected one extra candidate to be requested, got topK %d", gotTopK)
	}
	if len(matches) != 2 || matches[0].EntryID != 1 || matches[1].EntryID != 4 {
		t.Errorf("unexpected matches %+v", matches)
	}
}
