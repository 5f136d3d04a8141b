package rag

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Common errors for Milvus operations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
)

// Field names of the archive collection.
const (
	fieldID        = "id"
	fieldEntryID   = "entry_id"
	fieldPath      = "path"
	fieldContent   = "content"
	fieldEmbedding = "embedding"
)

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension (1536 for text-embedding-3-small)

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
	EfSearch       int // HNSW ef at query time (default: 64)
}

// DefaultMilvusConfig returns the configuration for a local Milvus.
func DefaultMilvusConfig() MilvusConfig {
	return MilvusConfig{
		Address:        "localhost:19530",
		CollectionName: "gopher_archive",
		Dimension:      1536,
		M:              16,
		EfConstruction: 256,
		EfSearch:       64,
	}
}

// MilvusStore implements VectorStore using Milvus.
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore connects to Milvus and ensures the archive collection
// exists with the expected schema.
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}
	if config.EfSearch <= 0 {
		config.EfSearch = 64
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates and loads the collection if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if has {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		Description:    "Gopher archive ciphers",
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       fieldID,
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:     fieldEntryID,
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     fieldPath,
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     fieldContent,
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     fieldEmbedding,
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(m.config.Dimension),
				},
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}

	if err := m.client.CreateIndex(ctx, m.config.CollectionName, fieldEmbedding, idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

// Insert adds entry records to Milvus. An empty slice is a no-op.
func (m *MilvusStore) Insert(ctx context.Context, records []EntryRecord) error {
	if len(records) == 0 {
		return nil
	}

	entryIDs := make([]int64, len(records))
	paths := make([]string, len(records))
	contents := make([]string, len(records))
	embeddings := make([][]float32, len(records))

	for i, record := range records {
		if len(record.Embedding) != m.config.Dimension {
			return fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				ErrInvalidDimension, record.EntryID, len(record.Embedding), m.config.Dimension)
		}
		entryIDs[i] = record.EntryID
		paths[i] = record.Path
		contents[i] = record.Content
		embeddings[i] = record.Embedding
	}

	columns := []entity.Column{
		entity.NewColumnInt64(fieldEntryID, entryIDs),
		entity.NewColumnVarChar(fieldPath, paths),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnFloatVector(fieldEmbedding, m.config.Dimension, embeddings),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	return nil
}

// Flush persists pending inserts.
func (m *MilvusStore) Flush(ctx context.Context) error {
	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}
	return nil
}

// Search performs top-K cosine similarity search.
func (m *MilvusStore) Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error) {
	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	sp, err := entity.NewIndexHNSWSearchParam(m.config.EfSearch)
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		"",
		[]string{fieldEntryID, fieldPath, fieldContent},
		[]entity.Vector{entity.FloatVector(queryVector)},
		fieldEmbedding,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []Match{}, nil
	}

	matches := make([]Match, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		match := Match{Score: results[0].Scores[i]}

		for _, field := range results[0].Fields {
			switch col := field.(type) {
			case *entity.ColumnInt64:
				if col.Name() == fieldEntryID {
					match.EntryID = col.Data()[i]
				}
			case *entity.ColumnVarChar:
				switch col.Name() {
				case fieldPath:
					match.Path = col.Data()[i]
				case fieldContent:
					match.Content = col.Data()[i]
				}
			}
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// Query checks which entry IDs exist in the store
func (m *MilvusStore) Query(ctx context.Context, entryIDs []int64) (map[int64]bool, error) {
	if len(entryIDs) == 0 {
		return map[int64]bool{}, nil
	}

	results, err := m.client.Query(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		entryFilter(entryIDs),
		[]string{fieldEntryID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}

	existence := make(map[int64]bool, len(entryIDs))
	for _, id := range entryIDs {
		existence[id] = false
	}

	for _, column := range results {
		if column.Name() != fieldEntryID {
			continue
		}
		if ids, ok := column.(*entity.ColumnInt64); ok {
			for _, id := range ids.Data() {
				existence[id] = true
			}
		}
	}

	return existence, nil
}

// Delete removes records by entry IDs
func (m *MilvusStore) Delete(ctx context.Context, entryIDs []int64) error {
	if len(entryIDs) == 0 {
		return nil
	}

	if err := m.client.Delete(ctx, m.config.CollectionName, "", entryFilter(entryIDs)); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	return nil
}

// GetStats returns collection statistics
func (m *MilvusStore) GetStats(ctx context.Context) (map[string]string, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return map[string]string{
		"row_count": stats["row_count"],
	}, nil
}

// Close releases resources and closes the Milvus connection
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// entryFilter builds a boolean expression selecting entryIDs.
func entryFilter(entryIDs []int64) string {
	ids := make([]string, len(entryIDs))
	for i, id := range entryIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%s in [%s]", fieldEntryID, strings.Join(ids, ", "))
}
