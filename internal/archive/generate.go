package archive

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// TemplateIDOffset keeps template entries clear of hand-written ones.
	TemplateIDOffset = 10000

	// TemplatePathPrefix marks entries produced from the word list template.
	TemplatePathPrefix = "/menu/word/"

	// GenerateBatchSize is how many words are processed per batch.
	GenerateBatchSize = 100
)

var ErrWordListMissing = errors.New("word list not found")

// ReadWordList returns the non-empty, trimmed lines of a word list file.
func ReadWordList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrWordListMissing, path)
		}
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	return words, nil
}

// TemplateEntry builds the template cipher for word at global index.
func TemplateEntry(word string, index int) Entry {
	return Entry{
		ID:      index + TemplateIDOffset,
		Path:    TemplatePathPrefix + strings.ToLower(word),
		Content: fmt.Sprintf("The ghost of the past whispers the word: %s. Verily, all knowledge ends in this singular truth.", word),
	}
}

// GenerateFromWords builds template entries for words[start:end].
// Bounds past the list are clamped to it; end <= start yields nothing. progress, if set, is called once per batch
// with the 1-based batch number and the batch length.
func GenerateFromWords(words []string, start, end int, progress func(batch, size int)) []Entry {
	if start < 0 {
		start = 0
	}
	if end > len(words) {
		end = len(words)
	}
	if start >= end {
		return []Entry{}
	}

	slice := words[start:end]
	entries := make([]Entry, 0, len(slice))

	for i := 0; i < len(slice); i += GenerateBatchSize {
		batchEnd := i + GenerateBatchSize
		if batchEnd > len(slice) {
			batchEnd = len(slice)
		}
		batch := slice[i:batchEnd]

		if progress != nil {
			progress(i/GenerateBatchSize+1, len(batch))
		}

		// Offset by the slice start so IDs stay stable across partial runs
		globalIndex := start + i
		for j, word := range batch {
			entries = append(entries, TemplateEntry(word, globalIndex+j))
		}
	}

	return entries
}

// WithoutTemplateEntries drops entries created by the word list template.
func WithoutTemplateEntries(entries []Entry) []Entry {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Path, TemplatePathPrefix) {
			kept = append(kept, e)
		}
	}
	return kept
}
