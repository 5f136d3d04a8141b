package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Yates-Labs/seance/internal/archive"
	gitingest "github.com/Yates-Labs/seance/internal/ingest/git"
	"github.com/Yates-Labs/seance/internal/narrative"
	"github.com/Yates-Labs/seance/internal/orchestrator"
	"github.com/Yates-Labs/seance/internal/rag"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	wordListFile  string
	generateStart int
	generateEnd   int
	conjureMax    int
	conjureEvery  time.Duration
	harvestMax    int
	reindex       bool
	topK          int
	relatedTo     int
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect and build the Gopher archive",
	Long: `Tools for the archive file the séance reads (ARCHIVE_PATH).

The server never writes the archive; these commands do.`,
}

var archiveStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report entry count, duplicate IDs and blank ciphers",
	Args:  cobra.NoArgs,
	RunE:  runArchiveStats,
}

var archiveSearchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Run the séance keyword search without the medium",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveSearch,
}

var archiveGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Append template ciphers for a slice of the word list",
	Long: `Append one template cipher per word in wordlist[start:end].
Entry IDs are the word's index plus 10000 and paths are /menu/word/<word>.

Examples:
  seance archive generate --words wordlist.txt --start 2000 --end 6000`,
	Args: cobra.NoArgs,
	RunE: runArchiveGenerate,
}

var archiveConjureCmd = &cobra.Command{
	Use:   "conjure",
	Short: "Replace template ciphers with LLM-written prophecies",
	Long: `Send the word list to the LLM in batches of 100 and append one
prophecy per valid word under /menu/semantic/<word>. Template entries
(/menu/word/) are removed first. Requests are throttled to one every seven
seconds; failed batches are skipped.

Examples:
  seance archive conjure --words wordlist.txt --max 6000`,
	Args: cobra.NoArgs,
	RunE: runArchiveConjure,
}

var archiveHarvestCmd = &cobra.Command{
	Use:   "harvest [repository]",
	Short: "Append commit subjects from a Git repository as ciphers",
	Long: `Open a local repository (or clone a remote one into memory) and add
one cipher per non-merge commit subject under /menu/commit/<hash>.

Examples:
  seance archive harvest .
  seance archive harvest https://github.com/user/repo --max 500`,
	Args: cobra.ExactArgs(1),
	RunE: runArchiveHarvest,
}

var archiveIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the archive into Milvus for semantic lookup",
	Long: `Embed every archive entry with the OpenAI embeddings API and store it
in Milvus.

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)`,
	Args: cobra.NoArgs,
	RunE: runArchiveIndex,
}

var archiveSimilarCmd = &cobra.Command{
	Use:   "similar [text]",
	Short: "Find the archive entries closest in meaning to text",
	Long: `Find the archive entries closest in meaning to text, or to an
existing entry with --entry.

Examples:
  seance archive similar "a lantern in the dark"
  seance archive similar --entry 1042 --topk 3`,
	Args: func(cmd *cobra.Command, args []string) error {
		if relatedTo == 0 && len(args) == 0 {
			return fmt.Errorf("give some text or --entry")
		}
		return nil
	},
	RunE: runArchiveSimilar,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveStatsCmd, archiveSearchCmd, archiveGenerateCmd,
		archiveConjureCmd, archiveHarvestCmd, archiveIndexCmd, archiveSimilarCmd)

	archiveGenerateCmd.Flags().StringVar(&wordListFile, "words", "wordlist.txt", "Word list file, one word per line")
	archiveGenerateCmd.Flags().IntVar(&generateStart, "start", 2000, "First word index (inclusive)")
	archiveGenerateCmd.Flags().IntVar(&generateEnd, "end", 6000, "Last word index (exclusive)")

	archiveConjureCmd.Flags().StringVar(&wordListFile, "words", "wordlist.txt", "Word list file, one word per line")
	archiveConjureCmd.Flags().IntVar(&conjureMax, "max", 6000, "Maximum number of words to send")
	archiveConjureCmd.Flags().DurationVar(&conjureEvery, "interval", 7*time.Second, "Minimum time between LLM requests")

	archiveHarvestCmd.Flags().IntVar(&harvestMax, "max", 0, "Maximum commits to read (0 for all)")

	archiveIndexCmd.Flags().BoolVar(&reindex, "reindex", false, "Re-embed entries that are already indexed")

	archiveSimilarCmd.Flags().IntVar(&topK, "topk", 5, "Number of entries to return")
	archiveSimilarCmd.Flags().IntVar(&relatedTo, "entry", 0, "Find entries related to this archive entry ID")
}

// loadForUpdate reads the archive for the offline tools. A missing or
// corrupt file starts a fresh archive.
func loadForUpdate(store *archive.Store) []archive.Entry {
	entries, err := store.Load()
	if err != nil {
		logger.Warn("archive unreadable, starting fresh", zap.String("path", store.Path()), zap.Error(err))
		return []archive.Entry{}
	}
	return entries
}

func runArchiveStats(cmd *cobra.Command, args []string) error {
	store := archive.NewStore(cfg.Archive.Path)
	entries, err := store.Load()
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	stats := archive.Stats(entries)
	fmt.Println(headerStyle.Render("Archive: ") + answerStyle.Render(store.Path()))
	fmt.Printf("%s %s\n", contextStyle.Render("entries:"), successStyle.Render(strconv.Itoa(stats.Entries)))
	fmt.Printf("%s %s\n", contextStyle.Render("max id: "), answerStyle.Render(strconv.Itoa(stats.MaxID)))

	if len(stats.DuplicateIDs) > 0 {
		fmt.Printf("%s %s\n", errorStyle.Render("duplicate ids:"), joinInts(stats.DuplicateIDs))
	}
	if len(stats.EmptyContent) > 0 {
		fmt.Printf("%s %s\n", errorStyle.Render("empty ciphers:"), joinInts(stats.EmptyContent))
	}
	return nil
}

func runArchiveSearch(cmd *cobra.Command, args []string) error {
	searcher := archive.NewSearcher(archive.NewStore(cfg.Archive.Path), archive.WithLogger(logger))
	result := searcher.Search(args[0])

	switch {
	case result.Empty:
		fmt.Println(errorStyle.Render(result.Text))
		return nil
	case result.Fallback:
		fmt.Println(contextStyle.Render("No direct match; the nexus offers a random cipher."))
	}

	rows := make([]entryRow, len(result.Matches))
	for i, m := range result.Matches {
		rows[i] = entryRow{ID: m.ID, Path: m.Path, Content: m.Content}
	}
	printEntryTable(rows, false)
	return nil
}

func runArchiveGenerate(cmd *cobra.Command, args []string) error {
	words, err := archive.ReadWordList(wordListFile)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	logger.Info("generating template ciphers",
		zap.Int("words", len(words)),
		zap.Int("start", generateStart),
		zap.Int("end", generateEnd))

	created := archive.GenerateFromWords(words, generateStart, generateEnd, func(batch, size int) {
		logger.Debug("template batch", zap.Int("batch", batch), zap.Int("size", size))
	})

	store := archive.NewStore(cfg.Archive.Path)
	entries := append(loadForUpdate(store), created...)
	if err := store.Save(entries); err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Added %d template ciphers (%d total) to %s", len(created), len(entries), store.Path())))
	return nil
}

func runArchiveConjure(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	words, err := archive.ReadWordList(wordListFile)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	llm, llmConfig, err := newLLM(ctx)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	if llm == nil {
		return fmt.Errorf("%s conjuring needs an LLM API key", errorStyle.Render("Error:"))
	}

	conjureConfig := orchestrator.DefaultConjureConfig()
	conjureConfig.MaxWords = conjureMax
	conjureConfig.Interval = conjureEvery
	conjurer := orchestrator.NewConjurer(narrative.NewGenerator(llm, llmConfig), conjureConfig, logger)

	store := archive.NewStore(cfg.Archive.Path)
	entries, report, err := conjurer.Conjure(ctx, words, loadForUpdate(store))
	if err != nil {
		// Keep what was conjured before the interruption
		logger.Warn("conjuring stopped early", zap.Error(err))
	}

	if saveErr := store.Save(entries); saveErr != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), saveErr)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Conjured %d ciphers from %d words (%d of %d batches failed)",
		report.Created, report.Words, report.FailedBatches, report.Batches)))
	return err
}

func runArchiveHarvest(cmd *cobra.Command, args []string) error {
	source := args[0]

	repo, err := gitingest.OpenSource(source)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	commits, err := gitingest.ParseCommits(repo, harvestMax)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	store := archive.NewStore(cfg.Archive.Path)
	existing := loadForUpdate(store)
	harvested := gitingest.HarvestEntries(commits, existing, archive.NextID(existing, 1))

	if err := store.Save(append(existing, harvested...)); err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Harvested %d ciphers from %d commits of %s",
		len(harvested), len(commits), gitingest.RepoName(source))))
	return nil
}

func newSemanticIndex(cmd *cobra.Command) (*orchestrator.SemanticIndex, error) {
	indexConfig := orchestrator.DefaultIndexConfig()
	indexConfig.OpenAIAPIKey = cfg.LLM.OpenAIAPIKey
	indexConfig.EmbedderModel = cfg.Embedder.Model
	indexConfig.EmbedderDimension = cfg.Embedder.Dimension
	indexConfig.Milvus.Address = cfg.Milvus.Address
	indexConfig.Milvus.CollectionName = cfg.Milvus.Collection
	indexConfig.Index.ForceReindex = reindex
	indexConfig.TopK = topK

	return orchestrator.NewSemanticIndex(cmd.Context(), indexConfig, logger)
}

func runArchiveIndex(cmd *cobra.Command, args []string) error {
	entries, err := archive.NewStore(cfg.Archive.Path).Load()
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	index, err := newSemanticIndex(cmd)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer index.Close()

	n, err := index.IndexArchive(cmd.Context(), entries)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Indexed %d of %d entries into %s", n, len(entries), cfg.Milvus.Collection)))

	stats, err := index.Stats(cmd.Context())
	if err != nil {
		logger.Warn("failed to read collection stats", zap.Error(err))
		return nil
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Printf("%s %s\n", contextStyle.Render(k+":"), answerStyle.Render(stats[k]))
	}
	return nil
}

func runArchiveSimilar(cmd *cobra.Command, args []string) error {
	index, err := newSemanticIndex(cmd)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer index.Close()

	var matches []rag.Match
	if relatedTo != 0 {
		entry, ok := findEntry(relatedTo)
		if !ok {
			return fmt.Errorf("%s no archive entry with id %d", errorStyle.Render("Error:"), relatedTo)
		}
		fmt.Println(contextStyle.Render("Related to: " + entry.Content))
		matches, err = index.Related(cmd.Context(), entry, topK)
	} else {
		matches, err = index.Similar(cmd.Context(), strings.Join(args, " "), topK)
	}
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	printEntryTable(matchRows(matches), true)
	return nil
}

func findEntry(id int) (archive.Entry, bool) {
	entries, err := archive.NewStore(cfg.Archive.Path).Load()
	if err != nil {
		logger.Warn("archive unreadable", zap.Error(err))
		return archive.Entry{}, false
	}
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return archive.Entry{}, false
}

// entryRow is one line of the archive table.
type entryRow struct {
	ID      int
	Path    string
	Content string
	Score   float32
}

func matchRows(matches []rag.Match) []entryRow {
	rows := make([]entryRow, len(matches))
	for i, m := range matches {
		rows[i] = entryRow{ID: int(m.EntryID), Path: m.Path, Content: m.Content, Score: m.Score}
	}
	return rows
}

func printEntryTable(rows []entryRow, withScore bool) {
	borderColor := lipgloss.Color("#6272A4")

	// Column widths
	const (
		idWidth      = 8
		pathWidth    = 30
		scoreWidth   = 8
		contentWidth = 60
	)

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	hdr := cellStyle.Foreground(headerColor).Bold(true)

	headers := []string{
		hdr.Width(idWidth).Render("ID"),
		hdr.Width(pathWidth).Render("PATH"),
	}
	separatorParts := []string{strings.Repeat("─", idWidth), strings.Repeat("─", pathWidth)}
	if withScore {
		headers = append(headers, hdr.Width(scoreWidth).Render("SCORE"))
		separatorParts = append(separatorParts, strings.Repeat("─", scoreWidth))
	}
	headers = append(headers, hdr.Width(contentWidth).Render("CIPHER"))
	separatorParts = append(separatorParts, strings.Repeat("─", contentWidth))

	fmt.Println(strings.Join(headers, borderStyle.Render("│")))
	fmt.Println(borderStyle.Render(strings.Join(separatorParts, "┼")))

	idStyle := cellStyle.Foreground(idColor).Width(idWidth).Align(lipgloss.Right)
	pathStyle := cellStyle.Foreground(questionColor).Width(pathWidth)
	scoreStyle := cellStyle.Foreground(numberColor).Width(scoreWidth).Align(lipgloss.Right)
	contentStyle := cellStyle.Foreground(answerColor).Width(contentWidth)

	for _, row := range rows {
		cells := []string{
			idStyle.Render(strconv.Itoa(row.ID)),
			pathStyle.Render(row.Path),
		}
		if withScore {
			cells = append(cells, scoreStyle.Render(fmt.Sprintf("%.3f", row.Score)))
		}
		cells = append(cells, contentStyle.Render(row.Content))

		fmt.Println(strings.Join(cells, borderStyle.Render("│")))
	}

	fmt.Println()
	fmt.Println(contextStyle.Render(fmt.Sprintf("%d entries", len(rows))))
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
