package narrative

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"
)

// fakeProvider serves a fixed status and body and records the last request body.
func fakeProvider(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		received = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &received
}

// closedURL returns the address of a server that is no longer listening.
func closedURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTestGemini(t *testing.T, baseURL string) *GeminiLLM {
	t.Helper()
	llm, err := NewGeminiLLM(testContext(t), LLMConfig{
		Provider: "gemini",
		Model:    "gemini-2.5-flash",
		APIKey:   "test-key",
		BaseURL:  baseURL,
	})
	if err != nil {
		t.Fatalf("failed to create Gemini client: %v", err)
	}
	return llm
}

func newTestOpenAI(t *testing.T, baseURL string) *OpenAILLM {
	t.Helper()
	llm, err := NewOpenAILLM(LLMConfig{
		Provider: "openai",
		Model:    "gpt-4o",
		APIKey:   "sk-test",
		BaseURL:  baseURL,
	})
	if err != nil {
		t.Fatalf("failed to create OpenAI client: %v", err)
	}
	return llm
}

const geminiQuotaError = `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`

func TestGeminiLLM_APIErrorIsErrAPI(t *testing.T) {
	srv, _ := fakeProvider(t, http.StatusTooManyRequests, geminiQuotaError)
	llm := newTestGemini(t, srv.URL)

	_, err := llm.Generate(testContext(t), Request{Prompt: "Who is there?"})
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
	if errors.Is(err, ErrLLMFailed) {
		t.Errorf("API errors must not also wrap ErrLLMFailed: %v", err)
	}
	if !strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		t.Errorf("expected the provider status in %q", err)
	}
}

func TestGeminiLLM_APIErrorGivesThemedReply(t *testing.T) {
	srv, _ := fakeProvider(t, http.StatusTooManyRequests, geminiQuotaError)
	medium := newTestMedium(newTestGemini(t, srv.URL), nil)

	if got := medium.Interpret(testContext(t), "Who is there?", "result"); got != APIFailureReply {
		t.Errorf("expected API failure reply, got %q", got)
	}
}

func TestGeminiLLM_TransportErrorIsNotErrAPI(t *testing.T) {
	llm := newTestGemini(t, closedURL())

	_, err := llm.Generate(testContext(t), Request{Prompt: "Who is there?"})
	if !errors.Is(err, ErrLLMFailed) {
		t.Fatalf("expected ErrLLMFailed, got %v", err)
	}
	if errors.Is(err, ErrAPI) {
		t.Errorf("transport failures must not wrap ErrAPI: %v", err)
	}
}

func TestGeminiLLM_SendsResponseSchema(t *testing.T) {
	srv, received := fakeProvider(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"[]"}]},"finishReason":"STOP"}]}`)
	llm := newTestGemini(t, srv.URL)

	schema := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{"is_valid": {Type: genai.TypeBoolean}}},
	}
	got, err := llm.Generate(testContext(t), Request{Prompt: "ember", JSON: true, ResponseSchema: schema})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "[]" {
		t.Errorf("unexpected reply %q", got)
	}

	for _, want := range []string{"application/json", "responseSchema", "is_valid"} {
		if !strings.Contains(*received, want) {
			t.Errorf("request body missing %q: %s", want, *received)
		}
	}
}

func TestOpenAILLM_APIErrorIsErrAPI(t *testing.T) {
	srv, _ := fakeProvider(t, http.StatusTooManyRequests,
		`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`)
	llm := newTestOpenAI(t, srv.URL)

	_, err := llm.Generate(testContext(t), Request{Prompt: "Who is there?"})
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
	if errors.Is(err, ErrLLMFailed) {
		t.Errorf("API errors must not also wrap ErrLLMFailed: %v", err)
	}

	medium := newTestMedium(llm, nil)
	if got := medium.Interpret(testContext(t), "Who is there?", "result"); got != APIFailureReply {
		t.Errorf("expected API failure reply, got %q", got)
	}
}

func TestOpenAILLM_TransportErrorIsNotErrAPI(t *testing.T) {
	llm := newTestOpenAI(t, closedURL())

	_, err := llm.Generate(testContext(t), Request{Prompt: "Who is there?"})
	if !errors.Is(err, ErrLLMFailed) {
		t.Fatalf("expected ErrLLMFailed, got %v", err)
	}
	if errors.Is(err, ErrAPI) {
		t.Errorf("transport failures must not wrap ErrAPI: %v", err)
	}

	medium := newTestMedium(llm, nil)
	if got := medium.Interpret(testContext(t), "Who is there?", "result"); got != UnknownFailureReply {
		t.Errorf("expected generic failure reply, got %q", got)
	}
}
