package narrative

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM is a deterministic LLM implementation for testing.
// It returns predictable responses based on request content.
type MockLLM struct {
	// Response is the fixed text returned by Generate.
	// If empty, a default response is generated from the prompt.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// LastRequest stores the most recent request passed to Generate.
	LastRequest Request

	// Calls counts Generate invocations.
	Calls int
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Generate returns the configured response or generates a deterministic one.
func (m *MockLLM) Generate(ctx context.Context, req Request) (string, error) {
	m.LastRequest = req
	m.Calls++

	if m.Error != nil {
		return "", m.Error
	}

	if m.Response != "" {
		return m.Response, nil
	}

	return generateMockResponse(req.Prompt), nil
}

// generateMockResponse creates a predictable reply from the prompt.
func generateMockResponse(prompt string) string {
	question := "nothing"
	const marker = "The user has submitted the following question: \""
	if idx := strings.Index(prompt, marker); idx >= 0 {
		rest := prompt[idx+len(marker):]
		if end := strings.Index(rest, "\"\n"); end >= 0 {
			question = rest[:end]
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("The spirits consider your question about %s. ", question))
	b.WriteString(fmt.Sprintf("They found %d cipher(s) in the archive. ", countCiphers(prompt)))
	b.WriteString("The burrow is quiet tonight.")

	return b.String()
}

// countCiphers counts the separator-delimited ciphers in a prompt's search
// result block.
func countCiphers(prompt string) int {
	if !strings.Contains(prompt, "Matching Ciphers:") {
		if strings.Contains(prompt, "obscure wisdom") {
			return 1
		}
		return 0
	}
	return strings.Count(prompt, "\n---\n") - 1
}
