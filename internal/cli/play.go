package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"quizmaster/internal/app"
	"quizmaster/internal/config"
)

// NewPlayCmd plays a quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play <quizId>",
		Short: "Play a quiz in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quizID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || quizID <= 0 {
				return fmt.Errorf("invalid quiz id %q", args[0])
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx := cmd.Context()
			deps, err := newStack(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer deps.Close()

			service := app.NewPlayService(deps.quizzes, deps.sessions, logger)
			id, sess, err := service.Open(ctx, quizID)
			if err != nil {
				return err
			}
			defer service.Close(id)

			p := &player{service: service, id: id, sess: sess, out: cmd.OutOrStdout()}
			return p.run(ctx, cmd.InOrStdin())
		},
	}
}
