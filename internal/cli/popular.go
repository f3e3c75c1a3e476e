package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"quizmaster/internal/config"
	"quizmaster/internal/domain"
)

// NewPopularCmd lists the most played quizzes.
func NewPopularCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "popular",
		Short: "List the most played quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			quizzes, err := newAPIClient(cfg, newLogger(cfg)).ListPopular(cmd.Context())
			if err != nil {
				return err
			}
			printSummaries(cmd.OutOrStdout(), quizzes)
			return nil
		},
	}
}

func printSummaries(out io.Writer, quizzes []domain.QuizSummary) {
	if len(quizzes) == 0 {
		fmt.Fprintln(out, "No quizzes yet.")
		return
	}
	for _, q := range quizzes {
		fmt.Fprintf(out, "%6d  %-40s  %-10s  %3d questions  %d plays\n", q.ID, q.Title, q.Difficulty, q.QuestionsCount, q.Plays)
	}
}
