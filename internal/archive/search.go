package archive

import (
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"
)

// Rendered search texts. The medium sees these verbatim.
const (
	EmptyArchiveText = "ERROR: The Gopher Archive is empty or inaccessible."
	MatchHeader      = "Matching Ciphers:\n"
	MatchSeparator   = "\n---\n"
	FallbackHeader   = "No direct ciphers found matching that keyword. However, the nexus yields this obscure wisdom:\n"
)

// Searcher runs keyword lookups against an archive store.
type Searcher struct {
	store  *Store
	rng    *rand.Rand
	logger *zap.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithRand sets the random source used to pick fallback entries.
func WithRand(rng *rand.Rand) SearcherOption {
	return func(s *Searcher) {
		s.rng = rng
	}
}

// WithLogger sets the logger used to report unreadable archives.
func WithLogger(logger *zap.Logger) SearcherOption {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// NewSearcher creates a searcher over store.
func NewSearcher(store *Store, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// Entries loads the archive, treating an unreadable file like an empty one.
func (s *Searcher) Entries() []Entry {
	entries, err := s.store.Load()
	if err != nil {
		s.logger.Warn("archive could not be loaded", zap.String("path", s.store.Path()), zap.Error(err))
		return []Entry{}
	}
	return entries
}

// Search looks keyword up in every entry's content and path.
// All whole-word, case-insensitive matches are returned together; when there
// are none, one entry is picked at random instead. An empty archive is
// reported through Result.Empty and the fixed error text rather than a Go
// error, since the medium still has to say something.
func (s *Searcher) Search(keyword string) Result {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	entries := s.Entries()

	if len(entries) == 0 {
		return Result{
			Keyword: keyword,
			Text:    EmptyArchiveText,
			Empty:   true,
		}
	}

	var matches []Entry
	for _, entry := range entries {
		if containsWord(entry.Content, keyword) || containsWord(entry.Path, keyword) {
			matches = append(matches, entry)
		}
	}

	if len(matches) == 0 {
		pick := entries[s.rng.IntN(len(entries))]
		s.logger.Debug("no archive match, using random cipher",
			zap.String("keyword", keyword),
			zap.Int("entry_id", pick.ID))
		return Result{
			Keyword:  keyword,
			Text:     FallbackHeader + pick.Content,
			Matches:  []Entry{pick},
			Fallback: true,
		}
	}

	contents := make([]string, len(matches))
	for i, m := range matches {
		contents[i] = m.Content
	}

	s.logger.Debug("archive matches found",
		zap.String("keyword", keyword),
		zap.Int("matches", len(matches)))

	return Result{
		Keyword: keyword,
		Text:    MatchHeader + strings.Join(contents, MatchSeparator),
		Matches: matches,
	}
}
