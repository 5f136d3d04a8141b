package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrGenerationFailed = errors.New("narrative generation failed")
)

// Narrative is one piece of generated text.
type Narrative struct {
	// Text is the generated content, before any shaping
	Text string `json:"text"`

	// GeneratedAt is when this narrative was created
	GeneratedAt time.Time `json:"generated_at"`

	// Model is the LLM model used to generate this narrative
	Model string `json:"model"`
}

// Generator invokes an LLM on an already-assembled request.
// It must not perform retrieval or prompt construction.
type Generator struct {
	llm    LLM
	config LLMConfig
}

// NewGenerator creates a generator with the given LLM implementation.
func NewGenerator(llm LLM, config LLMConfig) *Generator {
	return &Generator{
		llm:    llm,
		config: config,
	}
}

// Enabled reports whether an LLM is configured.
func (g *Generator) Enabled() bool {
	return g != nil && g.llm != nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.config.Model
}

// Generate runs req through the LLM. Errors wrap ErrGenerationFailed and
// keep the provider's classification (ErrAPI or ErrLLMFailed) reachable
// through errors.Is.
func (g *Generator) Generate(ctx context.Context, req Request) (*Narrative, error) {
	if !g.Enabled() {
		return nil, fmt.Errorf("%w: LLM is required", ErrGenerationFailed)
	}
	if req.Prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrGenerationFailed)
	}

	text, err := g.llm.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: LLM invocation failed: %w", ErrGenerationFailed, err)
	}

	return &Narrative{
		Text:        text,
		GeneratedAt: time.Now(),
		Model:       g.config.Model,
	}, nil
}
