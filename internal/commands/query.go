package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/render"
	"github.com/diogo/chatwidget/internal/transcript"
	"github.com/diogo/chatwidget/internal/widget"
)

// errExchangeFailed is returned when the reply bubble is an error bubble
var errExchangeFailed = errors.New("request failed")

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorError    = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	dimStyle     = lipgloss.NewStyle().Foreground(colorTextDim)
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

// newSpinner creates a new animated spinner drawing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := successStyle.Bold(true).Render("✓")
	fmt.Fprintf(s.out, "%s %s\n", checkmark, successStyle.Render(message))
}

// stopWithError stops the spinner without a message
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// lineInput is the one-shot stand-in for the chat input field
type lineInput struct {
	value string
}

func (l *lineInput) Value() string     { return l.value }
func (l *lineInput) SetValue(s string) { l.value = s }

// runQuery runs one request cycle for message and prints the resulting bubble.
// Decoration goes to errOut only when stdout is a terminal.
func (a *app) runQuery(ctx context.Context, out, errOut io.Writer, message string) error {
	client, err := a.deps.NewClient(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	buf := transcript.NewBuffer()
	w := widget.New(&lineInput{value: message}, buf, client,
		widget.WithMaxInFlight(a.cfg.MaxInFlight),
		widget.WithLogger(a.logger.Named("widget")),
	)

	tty := a.deps.StdoutIsTTY()

	ex, err := w.Begin(message)
	if err != nil {
		return err
	}

	var spin *spinner
	if tty {
		spin = newSpinner(errOut, "Waiting for reply")
		spin.start()
	}

	start := time.Now()
	res := ex.Fetch(ctx)
	h := w.Finish(ex, res)
	a.logger.Debug("request finished",
		zap.Duration("took", time.Since(start)),
		zap.Bool("ok", res.OK()))

	if tty {
		if res.OK() {
			spin.stopWithSuccess("Done")
		} else {
			spin.stopWithError()
			fmt.Fprintln(errOut, formatErrorMessage(res.Err, "Request failed"))
		}
	}

	bubble, _ := buf.Get(h)

	if res.OK() {
		if err := a.deliverReply(errOut, res.Reply, tty); err != nil {
			return err
		}
		if a.opts.output != "" {
			return nil
		}
	}

	if !tty {
		fmt.Fprintln(out, bubble.Text)
	} else {
		printBubble(out, bubble.Text, render.FromConfig(a.cfg.Markdown))
	}

	if !res.OK() {
		return fmt.Errorf("%w: %s", errExchangeFailed, bubble.Text)
	}
	return nil
}

// deliverReply handles --copy and -o for a successful reply
func (a *app) deliverReply(errOut io.Writer, reply string, tty bool) error {
	if a.opts.copy || a.cfg.CopyToClipboard {
		if err := a.deps.Clipboard(reply); err != nil {
			a.logger.Warn("clipboard write failed", zap.Error(err))
			if tty {
				fmt.Fprintln(errOut, errorStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
			}
		} else if tty {
			fmt.Fprintln(errOut, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	if a.opts.output != "" {
		if err := os.WriteFile(a.opts.output, []byte(reply), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if tty {
			fmt.Fprintln(errOut, successStyle.Render(fmt.Sprintf("✓ Reply saved to %s", a.opts.output)))
		}
	}
	return nil
}

// printBubble renders an assistant bubble sized to the terminal
func printBubble(out io.Writer, text string, opts render.Options) {
	bubbleWidth := min(max(getTerminalWidth()-4, 40), 120)
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(out, assistantLabelStyle.Render("✦ Assistant"))

	rendered := render.Reply(models.AssistantMessage(text), opts.WithWidth(contentWidth))
	fmt.Fprintln(out, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, action string) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", action, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Try again or raise --timeout"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the chat server running? Check --endpoint"))
	case apierrors.IsInvalidResponse(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The server answered without a \"reply\" field"))
	case apierrors.IsAPIError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check the server logs"))
	}

	return sb.String()
}
