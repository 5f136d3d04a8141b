package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadWordList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordlist.txt")
	if err := os.WriteFile(path, []byte("  Alpha \n\nbeta\n   \ngamma\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	words, err := ReadWordList(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Alpha", "beta", "gamma"}
	if len(words) != len(want) {
		t.Fatalf("expected %d words, got %v", len(want), words)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d: got %q want %q", i, words[i], want[i])
		}
	}
}

func TestReadWordList_Missing(t *testing.T) {
	_, err := ReadWordList(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrWordListMissing) {
		t.Fatalf("expected ErrWordListMissing, got %v", err)
	}
}

func TestTemplateEntry(t *testing.T) {
	e := TemplateEntry("Lantern", 2000)

	if e.ID != 12000 {
		t.Errorf("expected id 12000, got %d", e.ID)
	}
	if e.Path != "/menu/word/lantern" {
		t.Errorf("unexpected path %q", e.Path)
	}
	want := "The ghost of the past whispers the word: Lantern. Verily, all knowledge ends in this singular truth."
	if e.Content != want {
		t.Errorf("unexpected content %q", e.Content)
	}
}

func TestGenerateFromWords_SliceAndBatches(t *testing.T) {
	words := make([]string, 250)
	for i := range words {
		words[i] = "w"
	}

	var batches []int
	entries := GenerateFromWords(words, 20, 245, func(batch, size int) {
		batches = append(batches, size)
	})

	if len(entries) != 225 {
		t.Fatalf("expected 225 entries, got %d", len(entries))
	}
	if entries[0].ID != 20+TemplateIDOffset {
		t.Errorf("first id: got %d", entries[0].ID)
	}
	if entries[len(entries)-1].ID != 244+TemplateIDOffset {
		t.Errorf("last id: got %d", entries[len(entries)-1].ID)
	}
	if len(batches) != 3 || batches[0] != 100 || batches[2] != 25 {
		t.Errorf("unexpected batch sizes %v", batches)
	}
}

func TestGenerateFromWords_ClampsBounds(t *testing.T) {
	words := []string{"a", "b", "c"}

	if got := GenerateFromWords(words, 0, 6000, nil); len(got) != 3 {
		t.Errorf("expected end to clamp, got %d entries", len(got))
	}
	if got := GenerateFromWords(words, 5, 10, nil); len(got) != 0 {
		t.Errorf("expected no entries past the end, got %d", len(got))
	}
}

func TestGenerateFromWords_EmptyRange(t *testing.T) {
	words := []string{"a", "b", "c"}

	if got := GenerateFromWords(words, 0, 0, nil); len(got) != 0 {
		t.Errorf("expected [0:0] to be empty, got %d entries", len(got))
	}
	if got := GenerateFromWords(words, 2, 1, nil); len(got) != 0 {
		t.Errorf("expected an inverted range to be empty, got %d entries", len(got))
	}
}

func TestWithoutTemplateEntries(t *testing.T) {
	entries := []Entry{
		{ID: 1, Path: "/menu/lore/a", Content: "keep"},
		{ID: 10001, Path: "/menu/word/b", Content: "drop"},
		{ID: 1000, Path: "/menu/semantic/c", Content: "keep"},
	}

	kept := WithoutTemplateEntries(entries)
	if len(kept) != 2 || kept[0].ID != 1 || kept[1].ID != 1000 {
		t.Errorf("unexpected entries kept: %+v", kept)
	}
}

func TestStats(t *testing.T) {
	stats := Stats([]Entry{
		{ID: 3, Content: "a"},
		{ID: 5, Content: ""},
		{ID: 3, Content: "b"},
	})

	if stats.Entries != 3 {
		t.Errorf("expected 3 entries, got %d", stats.Entries)
	}
	if len(stats.DuplicateIDs) != 1 || stats.DuplicateIDs[0] != 3 {
		t.Errorf("unexpected duplicates %v", stats.DuplicateIDs)
	}
	if len(stats.EmptyContent) != 1 || stats.EmptyContent[0] != 5 {
		t.Errorf("unexpected empty content %v", stats.EmptyContent)
	}
	if stats.MaxID != 5 {
		t.Errorf("expected max id 5, got %d", stats.MaxID)
	}
}

func TestNextID(t *testing.T) {
	if got := NextID(nil, 1000); got != 1000 {
		t.Errorf("expected start on empty archive, got %d", got)
	}
	if got := NextID([]Entry{{ID: 12000}, {ID: 4}}, 1000); got != 12001 {
		t.Errorf("expected 12001, got %d", got)
	}
}

func TestStore_LoadSaveRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "archive.json"))

	if err := store.Save(sampleEntries()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != len(sampleEntries()) {
		t.Fatalf("expected %d entries, got %d", len(sampleEntries()), len(loaded))
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	if err := os.WriteFile(path, []byte("[{"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewStore(path).Load()
	if !errors.Is(err, ErrArchiveUnreadable) {
		t.Fatalf("expected ErrArchiveUnreadable, got %v", err)
	}
}
