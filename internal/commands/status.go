package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the chat backend is reachable",
		Long:  `Calls the backend's /health and /version endpoints and prints the result.`,
		Args:  cobra.NoArgs,
		RunE:  a.runStatus,
	}
}

func (a *app) runStatus(cmd *cobra.Command, args []string) error {
	client, err := a.deps.NewClient(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintf(out, "Endpoint: %s\n", client.Endpoint())
	if sid := client.SessionID(); sid != "" {
		fmt.Fprintf(out, "Session:  %s\n", sid)
	}

	health, err := client.Health(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), formatErrorMessage(err, "Health check failed"))
		return fmt.Errorf("health check failed: %w", err)
	}

	version := health.Version
	if version == "" {
		v, err := client.Version(ctx)
		if err != nil {
			a.logger.Debug("version lookup failed", zap.Error(err))
		} else {
			version = v.Version
		}
	}
	if version == "" {
		version = "unknown"
	}

	if !health.Healthy() {
		fmt.Fprintf(out, "Status:   %s\n", errorStyle.Render(health.Status))
		fmt.Fprintf(out, "Version:  %s\n", version)
		return fmt.Errorf("backend reported status %q", health.Status)
	}

	fmt.Fprintf(out, "Status:   %s\n", successStyle.Render("✓ "+health.Status))
	fmt.Fprintf(out, "Version:  %s\n", version)
	return nil
}
