package narrative

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiLLM implements the LLM interface using Google's Gemini API.
type GeminiLLM struct {
	client *genai.Client
	config LLMConfig
}

// NewGeminiLLM creates a Gemini-backed LLM implementation.
func NewGeminiLLM(ctx context.Context, config LLMConfig) (*GeminiLLM, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key (set GEMINI_API_KEY)", ErrInvalidConfig)
	}
	if config.Model == "" {
		return nil, fmt.Errorf("%w: missing model name", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      config.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: config.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %w", ErrInvalidConfig, err)
	}

	return &GeminiLLM{
		client: client,
		config: config,
	}, nil
}

// Generate sends the request to Gemini and returns the generated text.
func (g *GeminiLLM) Generate(ctx context.Context, req Request) (string, error) {
	if req.Prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", ErrInvalidConfig)
	}

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(req.Temperature)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.ResponseSchema
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(req.Prompt), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: %d %s: %s", ErrAPI, apiErr.Code, apiErr.Status, apiErr.Message)
		}
		return "", fmt.Errorf("%w: %w", ErrLLMFailed, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no response generated", ErrLLMFailed)
	}

	return text, nil
}
