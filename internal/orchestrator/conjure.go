package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Yates-Labs/seance/internal/archive"
	"github.com/Yates-Labs/seance/internal/narrative"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	// SemanticPathPrefix is the menu path of conjured entries.
	SemanticPathPrefix = "/menu/semantic/"

	conjureTemperature = 0.9
)

var ErrMalformedCiphers = errors.New("malformed cipher batch")

// ConjurerSystemInstruction asks the model for one prophecy per word.
const ConjurerSystemInstruction = `
You are an ancient, digital medium, tasked with generating a single, concise, spooky prophecy for a given word.
The prophecy must be highly thematic, archaic, and unsettling, based on the word's primary meaning.

Your output MUST be a valid JSON array of objects.
For each word provided, you must return an object with the following structure:
{
    "word": "original word",
    "cipher": "The unique, short, cryptic prophecy.",
    "is_valid": true/false (Set to false if the word is a proper noun, acronym, or has no common meaning, otherwise true.)
}
`

// CipherSchema is the reply shape Gemini is held to: an array of Cipher.
var CipherSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"word":     {Type: genai.TypeString},
			"cipher":   {Type: genai.TypeString},
			"is_valid": {Type: genai.TypeBoolean},
		},
		Required: []string{"word", "cipher", "is_valid"},
	},
}

// Cipher is one item of the model's reply.
type Cipher struct {
	Word    string `json:"word"`
	Cipher  string `json:"cipher"`
	IsValid bool   `json:"is_valid"`
}

// ConjureConfig controls batching and pacing.
type ConjureConfig struct {
	// BatchSize is the number of words sent per request
	BatchSize int

	// MaxWords caps how many words of the list are processed
	MaxWords int

	// StartID is the id given to the first conjured entry
	StartID int

	// Interval is the minimum gap between two requests (0 disables throttling)
	Interval time.Duration
}

// DefaultConjureConfig keeps requests under ten per minute.
func DefaultConjureConfig() ConjureConfig {
	return ConjureConfig{
		BatchSize: 100,
		MaxWords:  6000,
		StartID:   1000,
		Interval:  7 * time.Second,
	}
}

// ConjureReport summarises a conjuring run.
type ConjureReport struct {
	Words         int
	Batches       int
	FailedBatches int
	Created       int
}

// Conjurer turns a word list into themed archive entries using an LLM.
type Conjurer struct {
	generator *narrative.Generator
	limiter   *rate.Limiter
	config    ConjureConfig
	logger    *zap.Logger
}

// NewConjurer creates a conjurer. Zero config fields take their defaults.
func NewConjurer(generator *narrative.Generator, config ConjureConfig, logger *zap.Logger) *Conjurer {
	defaults := DefaultConjureConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxWords <= 0 {
		config.MaxWords = defaults.MaxWords
	}
	if config.StartID <= 0 {
		config.StartID = defaults.StartID
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if config.Interval > 0 {
		limit = rate.Every(config.Interval)
	}

	return &Conjurer{
		generator: generator,
		limiter:   rate.NewLimiter(limit, 1),
		config:    config,
		logger:    logger,
	}
}

// Conjure builds the new archive from existing entries and words. Template
// entries are dropped from existing before the conjured ones are appended.
// A failed batch is logged and skipped; only context cancellation aborts
// the run, in which case the entries conjured so far are still returned.
func (c *Conjurer) Conjure(ctx context.Context, words []string, existing []archive.Entry) ([]archive.Entry, ConjureReport, error) {
	if len(words) > c.config.MaxWords {
		words = words[:c.config.MaxWords]
	}

	out := archive.WithoutTemplateEntries(existing)
	report := ConjureReport{Words: len(words)}
	nextID := c.config.StartID

	for start := 0; start < len(words); start += c.config.BatchSize {
		end := min(start+c.config.BatchSize, len(words))
		batch := words[start:end]
		report.Batches++

		if err := c.limiter.Wait(ctx); err != nil {
			return out, report, fmt.Errorf("conjuring interrupted: %w", err)
		}

		ciphers, err := c.ConjureBatch(ctx, batch)
		if err != nil {
			report.FailedBatches++
			c.logger.Warn("cipher batch failed, skipping",
				zap.Int("batch", report.Batches),
				zap.Error(err))
			continue
		}

		for _, item := range ciphers {
			entry, ok := cipherEntry(item, nextID)
			if !ok {
				continue
			}
			out = append(out, entry)
			nextID++
			report.Created++
		}

		c.logger.Info("cipher batch processed",
			zap.Int("processed", end),
			zap.Int("total", len(words)),
			zap.Int("created", report.Created))
	}

	return out, report, nil
}

// ConjureBatch asks the model for ciphers for one batch of words.
func (c *Conjurer) ConjureBatch(ctx context.Context, batch []string) ([]Cipher, error) {
	prompt := "Generate a unique cipher and validity flag for each of the following words:\n" + strings.Join(batch, ", ")

	narr, err := c.generator.Generate(ctx, narrative.Request{
		System:         ConjurerSystemInstruction,
		Prompt:         prompt,
		Temperature:    conjureTemperature,
		JSON:           true,
		ResponseSchema: CipherSchema,
	})
	if err != nil {
		return nil, err
	}

	return ParseCiphers(narr.Text)
}

// ParseCiphers decodes a model reply into ciphers. Markdown code fences
// around the JSON are tolerated.
func ParseCiphers(text string) ([]Cipher, error) {
	text = stripCodeFence(text)

	var ciphers []Cipher
	if err := json.Unmarshal([]byte(text), &ciphers); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCiphers, err)
	}
	if len(ciphers) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrMalformedCiphers)
	}
	return ciphers, nil
}

// cipherEntry converts item into an archive entry when it passes the
// quality filter.
func cipherEntry(item Cipher, id int) (archive.Entry, bool) {
	word := strings.TrimSpace(item.Word)
	cipher := strings.TrimSpace(item.Cipher)

	if !item.IsValid || utf8.RuneCountInString(cipher) <= 5 || utf8.RuneCountInString(word) <= 1 {
		return archive.Entry{}, false
	}

	return archive.Entry{
		ID:      id,
		Path:    SemanticPathPrefix + strings.ToLower(word),
		Content: cipher,
	}, true
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// drop the language tag
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
