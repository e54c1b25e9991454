package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the backend.

Press Enter to send, Ctrl+Y to copy the last reply, '/clear' to empty
the transcript.
Type '/exit' or '/quit', or press Esc or Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}
}

func (a *app) runChat(cmd *cobra.Command) error {
	client, err := a.deps.NewClient(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	a.logger.Info("chat started")
	return a.deps.TUI.RunChat(cmd.Context(), client, a.cfg, a.logger)
}
