package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Yates-Labs/seance/internal/archive"
	"github.com/Yates-Labs/seance/internal/config"
	"github.com/Yates-Labs/seance/internal/narrative"
	"github.com/Yates-Labs/seance/internal/orchestrator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "seance",
	Short: "Gopher Séance - consult the spirits of the Gopher archive",
	Long: `Gopher Séance answers questions by searching an archive of cryptic
"ciphers" and letting an LLM medium interpret what it finds.

It serves the séance and learning APIs over HTTP and ships the tooling that
builds the archive: word-list templates, LLM-conjured ciphers, harvested
commit history and an optional semantic index.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default: seance.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLLM builds the configured provider. A missing key is not an error: the
// returned LLM is nil and callers fall back to offline behaviour.
func newLLM(ctx context.Context) (narrative.LLM, narrative.LLMConfig, error) {
	llmConfig := narrative.LLMConfig{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey(),
		BaseURL:  cfg.LLM.BaseURL,
	}

	llm, err := narrative.NewLLM(ctx, llmConfig)
	if errors.Is(err, narrative.ErrMissingAPIKey) {
		logger.Warn("no LLM API key configured, running offline",
			zap.String("provider", llmConfig.Provider))
		return nil, llmConfig, nil
	}
	if err != nil {
		return nil, llmConfig, err
	}
	return llm, llmConfig, nil
}

// services is the object graph shared by serve and the one-shot commands.
type services struct {
	store     *archive.Store
	searcher  *archive.Searcher
	generator *narrative.Generator
	pipeline  *orchestrator.Pipeline
	historian *narrative.Historian
}

func newServices(ctx context.Context) (*services, error) {
	llm, llmConfig, err := newLLM(ctx)
	if err != nil {
		return nil, err
	}

	store := archive.NewStore(cfg.Archive.Path)
	searcher := archive.NewSearcher(store, archive.WithLogger(logger))
	generator := narrative.NewGenerator(llm, llmConfig)
	medium := narrative.NewMedium(
		generator,
		narrative.NewPersonaLoader(cfg.Archive.PersonaPath),
		narrative.MediumConfig{
			OpeningPhrase: cfg.Medium.OpeningPhrase,
			MaxWords:      cfg.Medium.MaxWords,
		},
		logger,
	)

	return &services{
		store:     store,
		searcher:  searcher,
		generator: generator,
		pipeline:  orchestrator.NewPipeline(searcher, medium, cfg.Archive.DefaultKeyword, logger),
		historian: narrative.NewHistorian(generator),
	}, nil
}
