package archive

import (
	"strings"
	"unicode"
)

const (
	// DefaultKeyword is searched when a query has no usable word.
	DefaultKeyword = "connection"

	// MinKeywordLength is the shortest word (in runes) taken from a query.
	MinKeywordLength = 4
)

// ExtractKeyword picks the search term for a query: the first whole word of
// at least MinKeywordLength runes, lowercased. Words are maximal runs of
// letters, digits and underscores. When no word qualifies, fallback is
// returned unchanged.
func ExtractKeyword(query, fallback string) string {
	for _, word := range words(strings.ToLower(query)) {
		if len(word) >= MinKeywordLength {
			return string(word)
		}
	}
	return fallback
}

// words splits s into maximal runs of word runes.
func words(s string) [][]rune {
	var (
		out     [][]rune
		current []rune
	)
	for _, r := range s {
		if isWordRune(r) {
			current = append(current, r)
			continue
		}
		if len(current) > 0 {
			out = append(out, current)
			current = nil
		}
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// containsWord reports whether keyword occurs in text bounded on both sides
// by a word boundary, ignoring case. A boundary sits between two runes (or a
// rune and either end of the text) whose word-ness differs, which is the
// same rule a regex \b applies.
func containsWord(text, keyword string) bool {
	hay := foldRunes(text)
	needle := foldRunes(keyword)

	for start := 0; start+len(needle) <= len(hay); start++ {
		if !runesEqual(hay[start:start+len(needle)], needle) {
			continue
		}
		end := start + len(needle)
		if atBoundary(hay, start) && atBoundary(hay, end) {
			return true
		}
	}
	return false
}

// atBoundary reports whether position i (between hay[i-1] and hay[i]) is a
// word boundary.
func atBoundary(hay []rune, i int) bool {
	before := i > 0 && isWordRune(hay[i-1])
	after := i < len(hay) && isWordRune(hay[i])
	return before != after
}

func foldRunes(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
