package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/render"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
		Long: `Show or change chatwidget settings stored in ~/.chatwidget/config.json.

Environment variables (CHATWIDGET_*) and a .env file in the working
directory override the file; "config show" prints the merged result.`,
		// Runs even when the stored config is invalid, so it can be fixed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value in the config file.\n\nKeys: " + strings.Join(config.Keys(), ", "),
		Args:  cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.Keys(), cobra.ShellCompDirectiveNoFileComp
			}
			if len(args) == 1 {
				switch args[0] {
				case "tui_theme":
					return render.TUIThemeNames(), cobra.ShellCompDirectiveNoFileComp
				case "markdown.style":
					var styles []string
					for _, s := range render.AvailableStyles() {
						styles = append(styles, s.Name+"\t"+s.Description)
					}
					// A JSON style file is also accepted
					return styles, cobra.ShellCompDirectiveDefault
				}
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: runConfigSet,
	})

	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	// Only the file is rewritten; env overrides are not persisted
	cfg, err := config.LoadFile()
	if err != nil {
		return err
	}

	switch key {
	case "tui_theme":
		if _, ok := render.GetTUIThemeByName(value); !ok {
			return fmt.Errorf("unknown theme %q (available: %s)", value, strings.Join(render.TUIThemeNames(), ", "))
		}
	case "markdown.style":
		if err := checkMarkdownStyle(value); err != nil {
			return err
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ %s = %s", key, value)))
	return nil
}

// checkMarkdownStyle accepts a built-in glamour style or an existing style file
func checkMarkdownStyle(style string) error {
	if render.IsStandardStyle(style) {
		return nil
	}
	if info, err := os.Stat(style); err == nil && !info.IsDir() {
		return nil
	}

	names := make([]string, 0, len(render.AvailableStyles()))
	for _, s := range render.AvailableStyles() {
		names = append(names, s.Name)
	}
	return fmt.Errorf("unknown markdown style %q (available: %s, or a path to a JSON style file)", style, strings.Join(names, ", "))
}
