package orchestrator

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/seance/internal/archive"
	"github.com/Yates-Labs/seance/internal/rag"
	"go.uber.org/zap"
)

// IndexConfig holds configuration for the semantic archive index.
type IndexConfig struct {
	// OpenAIAPIKey authenticates the embeddings API
	OpenAIAPIKey string

	// EmbedderModel is the model to use for embeddings (e.g., "text-embedding-3-small")
	EmbedderModel string

	// EmbedderDimension is the vector dimension for embeddings
	EmbedderDimension int

	// TopK is the default number of similar entries to return
	TopK int

	// Index controls batching and re-indexing
	Index rag.IndexOptions

	// Milvus holds the vector store configuration
	Milvus rag.MilvusConfig
}

// DefaultIndexConfig returns sensible defaults for the semantic index.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		EmbedderModel:     "text-embedding-3-small",
		EmbedderDimension: 1536,
		TopK:              5,
		Index:             rag.DefaultIndexOptions(),
		Milvus:            rag.DefaultMilvusConfig(),
	}
}

// SemanticIndex embeds archive entries into Milvus and looks them up by
// meaning rather than by keyword.
type SemanticIndex struct {
	config      IndexConfig
	vectorStore rag.VectorStore
	embedder    rag.Embedder
	retriever   *rag.Retriever
	logger      *zap.Logger
}

// NewSemanticIndex connects the embedder and the vector store.
func NewSemanticIndex(ctx context.Context, config IndexConfig, logger *zap.Logger) (*SemanticIndex, error) {
	embedder, err := rag.NewOpenAIEmbedder(config.OpenAIAPIKey, config.EmbedderModel, config.EmbedderDimension)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	config.Milvus.Dimension = config.EmbedderDimension
	vectorStore, err := rag.NewMilvusStore(ctx, config.Milvus)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	return newSemanticIndex(config, embedder, vectorStore, logger)
}

func newSemanticIndex(config IndexConfig, embedder rag.Embedder, vectorStore rag.VectorStore, logger *zap.Logger) (*SemanticIndex, error) {
	retriever, err := rag.NewRetriever(embedder, vectorStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}
	if config.TopK <= 0 {
		config.TopK = DefaultIndexConfig().TopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SemanticIndex{
		config:      config,
		vectorStore: vectorStore,
		embedder:    embedder,
		retriever:   retriever,
		logger:      logger,
	}, nil
}

// Close releases resources held by the index.
func (s *SemanticIndex) Close() error {
	if s.vectorStore != nil {
		return s.vectorStore.Close()
	}
	return nil
}

// IndexArchive embeds entries that are not yet in the store (or all of them
// when ForceReindex is set) and returns how many were written.
func (s *SemanticIndex) IndexArchive(ctx context.Context, entries []archive.Entry) (int, error) {
	s.logger.Info("indexing archive",
		zap.Int("entries", len(entries)),
		zap.String("model", s.embedder.GetModel()),
		zap.Bool("force", s.config.Index.ForceReindex))

	n, err := rag.IndexEntries(ctx, entries, s.embedder, s.vectorStore, s.config.Index)
	if err != nil {
		return n, fmt.Errorf("failed to index archive: %w", err)
	}

	s.logger.Info("archive indexed", zap.Int("written", n))
	return n, nil
}

// Similar returns the entries closest in meaning to query. topK <= 0 uses
// the configured default.
func (s *SemanticIndex) Similar(ctx context.Context, query string, topK int) ([]rag.Match, error) {
	if topK <= 0 {
		topK = s.config.TopK
	}
	return s.retriever.SimilarEntries(ctx, query, topK)
}

// Related returns the entries closest in meaning to entry, leaving entry
// itself out. topK <= 0 uses the configured default.
func (s *SemanticIndex) Related(ctx context.Context, entry archive.Entry, topK int) ([]rag.Match, error) {
	if topK <= 0 {
		topK = s.config.TopK
	}
	return s.retriever.SimilarToEntry(ctx, entry.Content, int64(entry.ID), topK)
}

// Stats reports the vector store's collection statistics.
func (s *SemanticIndex) Stats(ctx context.Context) (map[string]string, error) {
	return s.vectorStore.GetStats(ctx)
}
