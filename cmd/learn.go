package cmd

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Yates-Labs/seance/internal/narrative"
	"github.com/spf13/cobra"
)

var learnCmd = &cobra.Command{
	Use:   "learn [question]",
	Short: "Ask the historian about early internet history",
	Long: `Ask the historian a question about Gopher, the early web or the
protocols around them. Answers compare then and now.

Examples:
  seance learn "How did Gopher differ from the World Wide Web?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLearn,
}

func init() {
	rootCmd.AddCommand(learnCmd)
}

func runLearn(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if utf8.RuneCountInString(question) < 4 {
		return fmt.Errorf("%s query too short", errorStyle.Render("Error:"))
	}

	svc, err := newServices(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	answer, err := svc.historian.Answer(cmd.Context(), question)
	if errors.Is(err, narrative.ErrOffline) {
		return fmt.Errorf("%s the educational archive is offline, configure an LLM API key", errorStyle.Render("Error:"))
	}
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Question:"))
	fmt.Println(questionStyle.Render(question))
	fmt.Println()
	fmt.Println(headerStyle.Render("The historian answers:"))
	fmt.Println()
	fmt.Println(answerStyle.Render(strings.TrimSpace(answer)))
	fmt.Println()

	return nil
}
