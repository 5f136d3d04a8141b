// Package narrative turns archive lookups into spoken answers. It defines a
// provider-agnostic LLM interface with concrete implementations for Gemini
// and OpenAI plus a deterministic mock for testing, and the two voices built
// on top of it: the Medium, who interprets séance ciphers, and the
// Historian, who answers the learning page.
package narrative

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
	ErrMissingAPIKey = errors.New("missing LLM API key")

	// ErrAPI marks failures reported by the provider's API itself (bad
	// status, quota, auth) as opposed to local or transport problems.
	ErrAPI = errors.New("LLM provider API error")
)

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type LLM interface {
	// Generate produces text for the request using the configured model.
	// Provider API failures must wrap ErrAPI; everything else wraps ErrLLMFailed.
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is a single generation call.
type Request struct {
	// System is the system instruction; may be empty
	System string

	// Prompt is the user content
	Prompt string

	// Temperature controls randomness (0 = provider default)
	Temperature float32

	// MaxTokens limits the response length (0 = provider default)
	MaxTokens int

	// JSON asks the provider for a JSON response body where supported
	JSON bool

	// ResponseSchema constrains a JSON response. Only Gemini enforces it;
	// other providers rely on the prompt.
	ResponseSchema *genai.Schema
}

// LLMConfig holds common configuration options for LLM providers.
type LLMConfig struct {
	// Provider is "gemini" or "openai"
	Provider string

	// Model specifies the model identifier (e.g., "gemini-2.5-flash", "gpt-4o")
	Model string

	// APIKey is the authentication key for the provider
	APIKey string

	// BaseURL overrides the provider endpoint (proxies, local gateways)
	BaseURL string
}

// DefaultLLMConfig returns the defaults the séance was tuned with.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider: "gemini",
		Model:    "gemini-2.5-flash",
	}
}

// NewLLM builds the provider named in config.
// It returns ErrMissingAPIKey when no key is configured so callers can
// degrade to offline behaviour instead of failing.
func NewLLM(ctx context.Context, config LLMConfig) (LLM, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch config.Provider {
	case "", "gemini":
		return NewGeminiLLM(ctx, config)
	case "openai":
		return NewOpenAILLM(config)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, config.Provider)
	}
}
