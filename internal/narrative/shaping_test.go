package narrative

import (
	"strings"
	"testing"
)

// bodyWordCount counts the words after the first opening phrase, or in the
// whole text when the phrase is absent.
func bodyWordCount(text, opening string) int {
	if _, body, found := strings.Cut(text, opening); opening != "" && found {
		return len(strings.Fields(body))
	}
	return len(strings.Fields(text))
}

func repeatWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "word"
	}
	return strings.Join(words, " ")
}

func TestEnsureOpening(t *testing.T) {
	got := EnsureOpening("The menus are silent.", DefaultOpeningPhrase)
	want := DefaultOpeningPhrase + "\n\nThe menus are silent."
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}

	already := DefaultOpeningPhrase + " The menus are silent."
	if EnsureOpening(already, DefaultOpeningPhrase) != already {
		t.Error("text that already starts with the phrase must be unchanged")
	}
}

func TestEnforceWordLimit_WithinBudget(t *testing.T) {
	text := DefaultOpeningPhrase + "\n\n  " + repeatWords(85) + "  "

	if got := EnforceWordLimit(text, DefaultOpeningPhrase, 85); got != text {
		t.Errorf("text within budget must be returned unchanged, got %q", got)
	}
}

func TestEnforceWordLimit_TruncatesBody(t *testing.T) {
	text := DefaultOpeningPhrase + "\n" + repeatWords(120)

	got := EnforceWordLimit(text, DefaultOpeningPhrase, 85)

	want := DefaultOpeningPhrase + "\n\n" + repeatWords(85) + "..."
	if got != want {
		t.Errorf("unexpected truncation:\n got %q\nwant %q", got, want)
	}
	if n := bodyWordCount(got, DefaultOpeningPhrase); n != 85 {
		t.Errorf("expected 85 body words, got %d", n)
	}
}

func TestEnforceWordLimit_OpeningNotAtStart(t *testing.T) {
	text := "Lo! " + DefaultOpeningPhrase + " " + repeatWords(10)

	got := EnforceWordLimit(text, DefaultOpeningPhrase, 5)

	want := DefaultOpeningPhrase + "\n\n" + repeatWords(5) + "..."
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestEnforceWordLimit_NoOpening(t *testing.T) {
	got := EnforceWordLimit(repeatWords(10), DefaultOpeningPhrase, 3)
	if got != "word word word..." {
		t.Errorf("got %q", got)
	}

	if got := EnforceWordLimit("short text", DefaultOpeningPhrase, 3); got != "short text" {
		t.Errorf("short text must be unchanged, got %q", got)
	}
}

func TestEnforceWordLimit_BodyNeverExceedsLimit(t *testing.T) {
	for limit := 1; limit <= 100; limit += 7 {
		for n := 0; n <= 130; n += 13 {
			text := EnsureOpening(repeatWords(n), DefaultOpeningPhrase)
			got := EnforceWordLimit(text, DefaultOpeningPhrase, limit)

			if !strings.HasPrefix(got, DefaultOpeningPhrase) {
				t.Fatalf("limit=%d n=%d: opening phrase lost: %q", limit, n, got)
			}
			if c := bodyWordCount(got, DefaultOpeningPhrase); c > limit {
				t.Fatalf("limit=%d n=%d: body has %d words", limit, n, c)
			}
		}
	}
}
