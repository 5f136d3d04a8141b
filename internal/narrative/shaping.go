package narrative

import "strings"

const (
	// DefaultOpeningPhrase starts every interpretation.
	DefaultOpeningPhrase = "Hark, the Gopher nexus coughs up a cipher..."

	// DefaultMaxWords is the word budget after the opening phrase.
	DefaultMaxWords = 85

	truncationMark = "..."
)

// EnsureOpening prefixes text with the opening phrase and a blank line
// unless it already starts with it.
func EnsureOpening(text, opening string) string {
	if strings.HasPrefix(text, opening) {
		return text
	}
	return opening + "\n\n" + text
}

// EnforceWordLimit keeps at most maxWords words after the opening phrase.
//
// When the phrase occurs in text, only what follows its first occurrence is
// counted; an over-long body is rebuilt as the phrase, a blank line, the
// first maxWords words joined by single spaces and a trailing "...". A body
// within budget is returned untouched. Without the phrase the whole text is
// truncated the same way.
func EnforceWordLimit(text, opening string, maxWords int) string {
	if maxWords <= 0 {
		return text
	}

	if opening != "" {
		if _, body, found := strings.Cut(text, opening); found {
			words := strings.Fields(body)
			if len(words) > maxWords {
				return opening + "\n\n" + strings.Join(words[:maxWords], " ") + truncationMark
			}
			return text
		}
	}

	words := strings.Fields(text)
	if len(words) > maxWords {
		return strings.Join(words[:maxWords], " ") + truncationMark
	}
	return text
}
