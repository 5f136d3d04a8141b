package narrative

import (
	"context"
	"errors"
	"fmt"
)

const (
	// LearnTemperature is the sampling temperature for learning answers.
	LearnTemperature = 0.7

	// LearnMaxTokens caps the historian's answer length.
	LearnMaxTokens = 400
)

var ErrOffline = errors.New("educational archive offline")

// Historian answers questions about internet history for the learning page.
type Historian struct {
	generator *Generator
}

// NewHistorian creates a historian backed by generator.
func NewHistorian(generator *Generator) *Historian {
	return &Historian{generator: generator}
}

// Online reports whether the historian can reach an LLM.
func (h *Historian) Online() bool {
	return h.generator.Enabled()
}

// Answer returns the historian's reply. ErrOffline is returned when no LLM
// is configured; any generation failure wraps ErrGenerationFailed.
func (h *Historian) Answer(ctx context.Context, query string) (string, error) {
	if !h.Online() {
		return "", ErrOffline
	}

	prompt, err := AssembleLearnPrompt(query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	narr, err := h.generator.Generate(ctx, Request{
		Prompt:      prompt,
		Temperature: LearnTemperature,
		MaxTokens:   LearnMaxTokens,
	})
	if err != nil {
		return "", err
	}

	return narr.Text, nil
}
