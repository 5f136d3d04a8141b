package narrative

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Fixed replies used when the spirits cannot be reached.
const (
	APIFailureReply     = "The spirits are angered! A connection error occurred. The wisdom remains locked in the digital nether."
	UnknownFailureReply = "A spectral anomaly interrupted the transmission."
)

// SeanceTemperature is the sampling temperature for interpretations.
const SeanceTemperature = 0.8

// MediumConfig shapes the medium's replies.
type MediumConfig struct {
	OpeningPhrase string
	MaxWords      int
}

// DefaultMediumConfig returns the opening phrase and word budget the
// persona document asks for.
func DefaultMediumConfig() MediumConfig {
	return MediumConfig{
		OpeningPhrase: DefaultOpeningPhrase,
		MaxWords:      DefaultMaxWords,
	}
}

// Medium interprets archive ciphers in the voice of the persona document.
type Medium struct {
	generator *Generator
	persona   *PersonaLoader
	config    MediumConfig
	logger    *zap.Logger
}

// NewMedium creates a medium. generator may carry a nil LLM, in which case
// Interpret returns a canned reply instead of calling out.
func NewMedium(generator *Generator, persona *PersonaLoader, config MediumConfig, logger *zap.Logger) *Medium {
	if config.OpeningPhrase == "" {
		config.OpeningPhrase = DefaultOpeningPhrase
	}
	if config.MaxWords <= 0 {
		config.MaxWords = DefaultMaxWords
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Medium{
		generator: generator,
		persona:   persona,
		config:    config,
		logger:    logger,
	}
}

// Online reports whether the medium can reach an LLM.
func (m *Medium) Online() bool {
	return m.generator.Enabled()
}

// Interpret produces the medium's reading of searchResult for query.
// It never fails: provider errors become one of the fixed replies. A
// successful reply always starts with the opening phrase and carries at
// most MaxWords words after it.
func (m *Medium) Interpret(ctx context.Context, query, searchResult string) string {
	opening := m.config.OpeningPhrase

	if !m.Online() {
		mock := fmt.Sprintf("The client connection is severed! Search result: '%s' remains a mystery.", searchResult)
		return opening + "\n\n" + mock
	}

	prompt, err := AssembleSeancePrompt(query, searchResult, opening, m.config.MaxWords)
	if err != nil {
		m.logger.Warn("séance prompt rejected", zap.Error(err))
		return UnknownFailureReply
	}

	narr, err := m.generator.Generate(ctx, Request{
		System:      m.persona.Load(),
		Prompt:      prompt,
		Temperature: SeanceTemperature,
	})
	if err != nil {
		if errors.Is(err, ErrAPI) {
			m.logger.Warn("medium API error", zap.Error(err))
			return APIFailureReply
		}
		m.logger.Error("medium generation failed", zap.Error(err))
		return UnknownFailureReply
	}

	text := EnsureOpening(narr.Text, opening)
	return EnforceWordLimit(text, opening, m.config.MaxWords)
}
