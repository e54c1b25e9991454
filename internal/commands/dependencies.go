package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/diogo/chatwidget/internal/api"
	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, client api.ChatClientInterface, cfg config.Config, logger *zap.Logger) error
}

// ClientFactory builds a backend client from the effective configuration.
type ClientFactory func(cfg config.Config, logger *zap.Logger) (api.ChatClientInterface, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient creates the chat backend client.
	NewClient ClientFactory

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error

	// Stdin is read when a message is piped in.
	Stdin io.Reader

	// StdinIsPipe reports whether Stdin carries piped input.
	StdinIsPipe func() bool

	// StdoutIsTTY reports whether output goes to a terminal.
	StdoutIsTTY func() bool
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, client api.ChatClientInterface, cfg config.Config, logger *zap.Logger) error {
	return tui.RunChat(ctx, client, cfg, logger)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:   newAPIClient,
		TUI:         &DefaultTUI{},
		Clipboard:   clipboard.WriteAll,
		Stdin:       os.Stdin,
		StdinIsPipe: stdinIsPipe,
		StdoutIsTTY: isStdoutTTY,
	}
}

func newAPIClient(cfg config.Config, logger *zap.Logger) (api.ChatClientInterface, error) {
	opts := []api.ClientOption{
		api.WithEndpoint(cfg.Endpoint),
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger.Named("api")),
	}
	if cfg.SessionID != "" {
		opts = append(opts, api.WithSessionID(cfg.SessionID))
	}
	return api.NewClient(opts...)
}

func stdinIsPipe() bool {
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
