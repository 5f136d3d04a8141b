package archive

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArchive(t *testing.T, entries []Entry) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "gopher_archive.json"))
	if err := store.Save(entries); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	return store
}

func sampleEntries() []Entry {
	return []Entry{
		{ID: 1, Path: "/menu/lore/origins", Content: "The burrow remembers every menu it once served."},
		{ID: 2, Path: "/menu/lore/silence", Content: "Lies sleep beneath the veronica index."},
		{ID: 3, Path: "/menu/word/connection", Content: "A thread hums between forgotten hosts."},
		{ID: 4, Path: "/menu/lore/echo", Content: "Whispers of the Burrow, whispers of the dead."},
	}
}

func TestSearch_MatchesContent(t *testing.T) {
	searcher := NewSearcher(writeArchive(t, sampleEntries()))

	result := searcher.Search("lies")

	if result.Fallback || result.Empty {
		t.Fatalf("expected a direct match, got %+v", result)
	}
	if len(result.Matches) != 1 || result.Matches[0].ID != 2 {
		t.Fatalf("expected entry 2 to match, got %+v", result.Matches)
	}
	if !strings.HasPrefix(result.Text, MatchHeader) {
		t.Errorf("missing match header: %q", result.Text)
	}
	if !strings.Contains(result.Text, "Lies sleep beneath the veronica index.") {
		t.Errorf("result does not contain matching content: %q", result.Text)
	}
}

func TestSearch_MatchesPath(t *testing.T) {
	searcher := NewSearcher(writeArchive(t, sampleEntries()))

	result := searcher.Search("connection")

	if len(result.Matches) != 1 || result.Matches[0].ID != 3 {
		t.Fatalf("expected path match on entry 3, got %+v", result.Matches)
	}
}

func TestSearch_CaseInsensitiveAndJoinedInOrder(t *testing.T) {
	searcher := NewSearcher(writeArchive(t, sampleEntries()))

	result := searcher.Search("  BURROW ")

	if result.Keyword != "burrow" {
		t.Errorf("expected normalized keyword, got %q", result.Keyword)
	}
	if len(result.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result.Matches))
	}

	want := MatchHeader + sampleEntries()[0].Content + MatchSeparator + sampleEntries()[3].Content
	if result.Text != want {
		t.Errorf("unexpected text:\n got %q\nwant %q", result.Text, want)
	}
}

func TestSearch_WholeWordOnly(t *testing.T) {
	searcher := NewSearcher(writeArchive(t, []Entry{
		{ID: 1, Path: "/menu/a", Content: "menus and menuing"},
		{ID: 2, Path: "/menu/b", Content: "the menu."},
	}), WithRand(rand.New(rand.NewPCG(1, 2))))

	result := searcher.Search("menu")

	// entry 1's path holds "menu" as a segment, so both match
	if len(result.Matches) != 2 {
		t.Fatalf("expected both entries to match, got %+v", result.Matches)
	}

	result = searcher.Search("menuin")
	if !result.Fallback {
		t.Fatalf("partial word must not match, got %+v", result)
	}
}

func TestSearch_FallbackPicksExactlyOneEntry(t *testing.T) {
	entries := sampleEntries()
	searcher := NewSearcher(writeArchive(t, entries), WithRand(rand.New(rand.NewPCG(7, 7))))

	for i := 0; i < 20; i++ {
		result := searcher.Search("zeppelin")
		if !result.Fallback {
			t.Fatalf("expected fallback, got %+v", result)
		}
		if len(result.Matches) != 1 {
			t.Fatalf("expected exactly one fallback entry, got %d", len(result.Matches))
		}
		if !strings.HasPrefix(result.Text, FallbackHeader) {
			t.Fatalf("missing fallback header: %q", result.Text)
		}

		body := strings.TrimPrefix(result.Text, FallbackHeader)
		found := 0
		for _, e := range entries {
			if body == e.Content {
				found++
			}
		}
		if found != 1 {
			t.Fatalf("fallback body is not exactly one entry: %q", body)
		}
	}
}

func TestSearch_EmptyArchive(t *testing.T) {
	searcher := NewSearcher(writeArchive(t, []Entry{}))

	result := searcher.Search("anything")

	if !result.Empty {
		t.Fatal("expected empty result")
	}
	if result.Text != EmptyArchiveText {
		t.Errorf("unexpected text: %q", result.Text)
	}
}

func TestSearch_MissingArchiveIsEmpty(t *testing.T) {
	searcher := NewSearcher(NewStore(filepath.Join(t.TempDir(), "nope.json")))

	result := searcher.Search("anything")

	if !result.Empty || result.Text != EmptyArchiveText {
		t.Fatalf("expected empty-archive result, got %+v", result)
	}
}

func TestSearch_CorruptArchiveIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gopher_archive.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := NewSearcher(NewStore(path)).Search("anything")

	if !result.Empty {
		t.Fatalf("expected corrupt archive to read as empty, got %+v", result)
	}
}

func TestSearch_ReloadsEveryCall(t *testing.T) {
	store := writeArchive(t, sampleEntries()[:1])
	searcher := NewSearcher(store)

	if got := searcher.Search("lies"); !got.Fallback {
		t.Fatalf("expected fallback before update, got %+v", got)
	}

	if err := store.Save(sampleEntries()); err != nil {
		t.Fatal(err)
	}

	if got := searcher.Search("lies"); got.Fallback {
		t.Fatalf("expected match after archive was rewritten, got %+v", got)
	}
}
