package git

import (
	"strings"

	"github.com/Yates-Labs/seance/internal/archive"
)

// CommitPathPrefix is the menu path of harvested entries.
const CommitPathPrefix = "/menu/commit/"

// HarvestEntries turns commit subjects into archive entries with sequential
// ids from startID. Merge commits, empty subjects and commits already
// present in existing (by path) are skipped.
func HarvestEntries(commits []Commit, existing []archive.Entry, startID int) []archive.Entry {
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		if strings.HasPrefix(e.Path, CommitPathPrefix) {
			seen[e.Path] = true
		}
	}

	entries := make([]archive.Entry, 0, len(commits))
	id := startID
	for _, c := range commits {
		if c.IsMerge || c.MessageSubject == "" {
			continue
		}
		path := CommitPathPrefix + c.ShortHash
		if seen[path] {
			continue
		}
		seen[path] = true

		entries = append(entries, archive.Entry{
			ID:      id,
			Path:    path,
			Content: c.MessageSubject,
		})
		id++
	}
	return entries
}
