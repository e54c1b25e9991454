// Package commands provides CLI commands for chatwidget.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/logger"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootOptions holds the flag values of one command tree
type rootOptions struct {
	endpoint string
	timeout  int
	logLevel string
	version  bool

	output string
	file   string
	copy   bool
}

// app carries state shared by the commands of one tree
type app struct {
	deps   *Dependencies
	opts   rootOptions
	cfg    config.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	a := &app{deps: deps, logger: logger.Nop()}

	cmd := &cobra.Command{
		Use:   "chatwidget [message]",
		Short: "Terminal chat client for a JSON chat backend",
		Long: `chatwidget sends messages to a chat backend (POST /chat) and shows
the replies, either once from the command line or in an interactive chat.

Examples:
  chatwidget chat                          Start interactive chat
  chatwidget "What is Go?"                 Send a single message
  chatwidget -f message.md                 Read the message from a file
  cat message.md | chatwidget              Read the message from stdin
  chatwidget "Hello" -o reply.md           Save the reply to a file
  chatwidget status                        Check the backend
  chatwidget config set endpoint http://localhost:8080`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: a.runRoot,
	}

	cmd.PersistentFlags().StringVar(&a.opts.endpoint, "endpoint", "", "Chat backend base URL (default from config)")
	cmd.PersistentFlags().IntVar(&a.opts.timeout, "timeout", 0, "Request timeout in seconds (default from config)")
	cmd.PersistentFlags().StringVar(&a.opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().StringVarP(&a.opts.output, "output", "o", "", "Save reply to file")
	cmd.Flags().StringVarP(&a.opts.file, "file", "f", "", "Read message from file")
	cmd.Flags().BoolVar(&a.opts.copy, "copy", false, "Copy reply to clipboard")
	cmd.Flags().BoolVarP(&a.opts.version, "version", "v", false, "Show version and exit")

	cmd.AddCommand(a.newChatCmd())
	cmd.AddCommand(a.newStatusCmd())
	cmd.AddCommand(a.newConfigCmd())

	return cmd
}

var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// setup loads the effective configuration and the logger for cmd
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = strings.TrimRight(a.opts.endpoint, "/")
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = a.opts.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// The chat screen owns the terminal, so its logs go to a file
	if cmd.Name() == "chat" {
		if _, err := config.EnsureConfigDir(); err != nil {
			return err
		}
		path, err := config.GetLogPath()
		if err != nil {
			return err
		}
		a.logger, err = logger.New(cfg.LogLevel, path)
		return err
	}

	a.logger, err = logger.NewConsole(logger.ParseLevel(cfg.LogLevel) == zapcore.DebugLevel)
	return err
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	if a.opts.version {
		fmt.Fprintf(cmd.OutOrStdout(), "chatwidget %s (built %s)\n", Version, BuildTime)
		return nil
	}

	message, ok, err := a.readMessage(args)
	if err != nil {
		return err
	}
	if !ok {
		return cmd.Help()
	}

	return a.runQuery(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), message)
}

// readMessage picks the message from -f, then stdin, then the argument
func (a *app) readMessage(args []string) (string, bool, error) {
	if a.opts.file != "" {
		data, err := os.ReadFile(a.opts.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) == 0 && a.deps.StdinIsPipe() {
		data, err := io.ReadAll(a.deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > 0 {
			return string(data), true, nil
		}
	}

	if len(args) > 0 {
		return args[0], true, nil
	}
	return "", false, nil
}
