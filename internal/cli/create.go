package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"quizmaster/internal/app"
	"quizmaster/internal/config"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/apiclient"
)

// NewCreateCmd publishes a quiz draft written in YAML.
func NewCreateCmd(configPath *string) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "create <draft.yaml>",
		Short: "Validate a quiz draft and publish it to the quiz API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			draft, err := readDraft(args[0])
			if err != nil {
				return err
			}
			client := newAPIClient(cfg, logger)
			return runCreate(cmd.Context(), client, username, password, draft, cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "log in with this user before publishing")
	cmd.Flags().StringVar(&password, "password", "", "password for --username")
	return cmd
}

func readDraft(path string) (domain.QuizDraft, error) {
	var draft domain.QuizDraft
	data, err := os.ReadFile(path)
	if err != nil {
		return draft, err
	}
	if err := yaml.Unmarshal(data, &draft); err != nil {
		return draft, fmt.Errorf("parse draft %s: %w", path, err)
	}
	return draft, nil
}

func runCreate(ctx context.Context, client *apiclient.Client, username, password string, draft domain.QuizDraft, out io.Writer, logger *slog.Logger) error {
	if username != "" {
		if err := client.ObtainToken(ctx, username, password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}
	if client.Credentials().Access() == "" {
		return fmt.Errorf("%w: pass --username/--password or configure api.access_token", domain.ErrUnauthorized)
	}

	created, err := app.NewAuthoringService(client, logger).Publish(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created quiz %d: %s (%d questions)\n", created.ID, created.Title, created.QuestionsCount)
	return nil
}
