package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Yates-Labs/seance/internal/orchestrator"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var showCipher bool

// LipGloss signature purple/pink palette
var (
	headerColor   = lipgloss.Color("#F780FF") // Bright pink
	questionColor = lipgloss.Color("#8BE9FD") // Cyan
	answerColor   = lipgloss.Color("#E9E9F4") // Light purple/white
	contextColor  = lipgloss.Color("#6272A4") // Muted purple
	numberColor   = lipgloss.Color("#FF79C6") // Pink
	idColor       = lipgloss.Color("#BD93F9") // Purple
	errorColor    = lipgloss.Color("#FF5555") // Red
	successColor  = lipgloss.Color("#50FA7B") // Green

	headerStyle   = lipgloss.NewStyle().Foreground(headerColor).Bold(true)
	questionStyle = lipgloss.NewStyle().Foreground(questionColor).Italic(true)
	answerStyle   = lipgloss.NewStyle().Foreground(answerColor)
	contextStyle  = lipgloss.NewStyle().Foreground(contextColor).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(successColor)
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Hold a one-shot séance from the terminal",
	Long: `Ask the medium a question without starting the server.

The first word of at least four letters is looked up in the archive and the
medium interprets whatever ciphers surface.

Required environment variables (otherwise the medium stays silent):
  GEMINI_API_KEY     - for the gemini provider (default)
  OPENAI_API_KEY     - for LLM_PROVIDER=openai

Examples:
  seance ask "What lies in the archive of forgotten words?"
  seance ask "Where did the menus go?" --cipher`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&showCipher, "cipher", false, "Also print the raw archive search result")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	ctx := cmd.Context()

	svc, err := newServices(ctx)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Question:"))
	fmt.Println(questionStyle.Render(question))
	fmt.Println()

	reading, err := svc.pipeline.Seance(ctx, question)
	if errors.Is(err, orchestrator.ErrEmptyQuery) {
		return fmt.Errorf("%s %s", errorStyle.Render("Error:"), "no query provided to the medium")
	}
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	if verbose || showCipher {
		fmt.Println(contextStyle.Render(fmt.Sprintf("→ keyword %q", reading.Keyword)))
		fmt.Println(contextStyle.Render(reading.CrypticResponse))
		fmt.Println()
	}

	fmt.Println(headerStyle.Render("The medium speaks:"))
	fmt.Println()
	fmt.Println(answerStyle.Render(strings.TrimSpace(reading.Interpretation)))
	fmt.Println()

	return nil
}
