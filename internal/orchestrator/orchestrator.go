package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Yates-Labs/seance/internal/archive"
	"github.com/Yates-Labs/seance/internal/narrative"
	"go.uber.org/zap"
)

var ErrEmptyQuery = errors.New("no query provided to the medium")

// Reading is the outcome of one séance.
type Reading struct {
	Query           string         `json:"query"`
	Keyword         string         `json:"keyword"`
	CrypticResponse string         `json:"cryptic_response"`
	Interpretation  string         `json:"interpretation"`
	Search          archive.Result `json:"-"`
}

// Pipeline runs a séance end to end: keyword extraction, archive search and
// the medium's interpretation.
type Pipeline struct {
	searcher       *archive.Searcher
	medium         *narrative.Medium
	defaultKeyword string
	logger         *zap.Logger
}

// NewPipeline wires a searcher and a medium together. defaultKeyword is
// searched when a query has no word long enough to use.
func NewPipeline(searcher *archive.Searcher, medium *narrative.Medium, defaultKeyword string, logger *zap.Logger) *Pipeline {
	if defaultKeyword == "" {
		defaultKeyword = archive.DefaultKeyword
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		searcher:       searcher,
		medium:         medium,
		defaultKeyword: defaultKeyword,
		logger:         logger,
	}
}

// Seance answers query. The only error is ErrEmptyQuery; archive and LLM
// trouble is folded into the reading's text.
func (p *Pipeline) Seance(ctx context.Context, query string) (*Reading, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	// Check for context cancellation
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before séance: %w", err)
	}

	// Step 1: Pick the search keyword
	keyword := archive.ExtractKeyword(query, p.defaultKeyword)

	// Step 2: Search the archive
	result := p.searcher.Search(keyword)

	p.logger.Info("archive searched",
		zap.String("keyword", result.Keyword),
		zap.Int("matches", len(result.Matches)),
		zap.Bool("fallback", result.Fallback),
		zap.Bool("empty", result.Empty))

	// Step 3: Let the medium interpret the result
	interpretation := p.medium.Interpret(ctx, query, result.Text)

	return &Reading{
		Query:           query,
		Keyword:         result.Keyword,
		CrypticResponse: result.Text,
		Interpretation:  interpretation,
		Search:          result,
	}, nil
}
