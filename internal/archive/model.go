// Package archive holds the Gopher Archive: a flat JSON ledger of cryptic
// entries, the keyword extractor that turns a free-text question into a
// search term, and the whole-word search that looks the term up.
package archive

import "sort"

// Entry is a single cipher in the archive.
// IDs are expected to be unique and content non-empty, but neither is
// enforced on load; see Stats.
type Entry struct {
	ID      int    `json:"id"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Result is the outcome of a keyword search.
type Result struct {
	// Keyword is the normalized term that was searched
	Keyword string `json:"keyword"`

	// Text is the rendered search result handed to the medium
	Text string `json:"text"`

	// Matches holds every entry that matched, in archive order
	Matches []Entry `json:"matches,omitempty"`

	// Fallback is set when nothing matched and a random entry was chosen
	Fallback bool `json:"fallback"`

	// Empty is set when the archive had no entries (or could not be read)
	Empty bool `json:"empty"`
}

// ArchiveStats reports on problems the archive does not guard against.
type ArchiveStats struct {
	Entries      int   `json:"entries"`
	DuplicateIDs []int `json:"duplicate_ids,omitempty"`
	EmptyContent []int `json:"empty_content,omitempty"`
	MaxID        int   `json:"max_id"`
}

// Stats scans entries for duplicate IDs and blank content.
func Stats(entries []Entry) ArchiveStats {
	stats := ArchiveStats{Entries: len(entries)}

	seen := make(map[int]int, len(entries))
	for i, e := range entries {
		seen[e.ID]++
		if e.Content == "" {
			stats.EmptyContent = append(stats.EmptyContent, e.ID)
		}
		if i == 0 || e.ID > stats.MaxID {
			stats.MaxID = e.ID
		}
	}

	for id, n := range seen {
		if n > 1 {
			stats.DuplicateIDs = append(stats.DuplicateIDs, id)
		}
	}
	sort.Ints(stats.DuplicateIDs)

	return stats
}

// NextID returns the first ID after the largest one in entries, or start if
// that is larger.
func NextID(entries []Entry, start int) int {
	next := start
	for _, e := range entries {
		if e.ID >= next {
			next = e.ID + 1
		}
	}
	return next
}
