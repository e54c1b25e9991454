package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/chatwidget/internal/api"
	"github.com/diogo/chatwidget/internal/config"
	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/render"
	"github.com/diogo/chatwidget/internal/transcript"
	"github.com/diogo/chatwidget/internal/widget"
)

// Message types for the TUI
type (
	replyMsg struct {
		ex  *widget.Exchange
		res widget.Result
	}
	copiedMsg struct {
		err error
	}
)

// Model represents the TUI state
type Model struct {
	ctx      context.Context
	client   api.ChatClientInterface
	widget   *widget.Widget
	logger   *zap.Logger
	copyFunc func(string) error

	// Shared with the widget, which mutates them through Begin and Finish
	input *textInput
	chat  *chatView

	spinner spinner.Model

	ready  bool
	notice string
	err    error

	width  int
	height int
}

// textInput adapts the textarea to widget.Input
type textInput struct {
	ta textarea.Model
}

func (t *textInput) Value() string {
	return t.ta.Value()
}

func (t *textInput) SetValue(s string) {
	if s == "" {
		t.ta.Reset()
		return
	}
	t.ta.SetValue(s)
}

// chatView adapts the transcript buffer and the viewport to widget.Transcript
type chatView struct {
	buf  *transcript.Buffer
	vp   viewport.Model
	opts render.Options

	// rendered markdown per reply, dropped on resize
	rendered map[models.Handle]string
	spin     string
}

func newChatView(opts render.Options) *chatView {
	vp := viewport.New(80, 20)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}
	return &chatView{
		buf:      transcript.NewBuffer(transcript.WithWelcome(transcript.DefaultWelcome)),
		vp:       vp,
		opts:     opts,
		rendered: make(map[models.Handle]string),
	}
}

func (c *chatView) RemoveWelcome() bool {
	return c.buf.RemoveWelcome()
}

func (c *chatView) Append(msg models.Message) models.Handle {
	h := c.buf.Append(msg)
	c.refresh()
	return h
}

func (c *chatView) Remove(h models.Handle) bool {
	delete(c.rendered, h)
	ok := c.buf.Remove(h)
	c.refresh()
	return ok
}

func (c *chatView) ScrollToBottom() {
	c.buf.ScrollToBottom()
	c.vp.GotoBottom()
}

func (c *chatView) clear() {
	c.buf.Clear()
	clear(c.rendered)
	c.refresh()
	c.vp.GotoTop()
}

func (c *chatView) resize(width, height int) {
	if width != c.vp.Width {
		clear(c.rendered)
	}
	c.vp.Width = width
	c.vp.Height = height
	c.buf.SetHeight(height)
	c.refresh()
}

// refresh rebuilds the viewport content from the buffer
func (c *chatView) refresh() {
	var content strings.Builder
	bubbleWidth := max(c.vp.Width-6, 10)

	for i, e := range c.buf.Entries() {
		if i > 0 {
			content.WriteString("\n")
		}

		msg := e.Message
		if msg.Sender == models.SenderUser {
			label := userLabelStyle.Render("● " + msg.Sender.Label())
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Text)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("✦ " + msg.Sender.Label())
			content.WriteString(label + "\n" + c.assistantBubble(e.Handle, msg, bubbleWidth))
		}
		content.WriteString("\n")
	}

	c.vp.SetContent(content.String())
}

func (c *chatView) assistantBubble(h models.Handle, msg models.Message, width int) string {
	switch {
	case msg.Loading:
		return loadingBubbleStyle.Width(width).Render(strings.TrimSpace(c.spin + " " + msg.Text))
	case msg.Text == models.ConnectionErrorText || msg.Text == models.InvalidReplyText:
		return errorBubbleStyle.Width(width).Render(msg.Text)
	}

	body, ok := c.rendered[h]
	if !ok {
		body = render.Reply(msg, c.opts.WithWidth(width-4))
		c.rendered[h] = body
	}
	return assistantBubbleStyle.Width(width).Render(body)
}

// NewChatModel creates a new chat TUI model
func NewChatModel(ctx context.Context, client api.ChatClientInterface, cfg config.Config, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	input := &textInput{ta: ta}
	chat := newChatView(render.FromConfig(cfg.Markdown))

	w := widget.New(input, chat, client,
		widget.WithMaxInFlight(cfg.MaxInFlight),
		widget.WithLogger(logger.Named("widget")),
	)

	return Model{
		ctx:      ctx,
		client:   client,
		widget:   w,
		logger:   logger,
		copyFunc: clipboard.WriteAll,
		input:    input,
		chat:     chat,
		spinner:  s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2

		vpHeight := max(m.height-headerHeight-inputHeight-statusHeight-padding, 5)
		contentWidth := m.width - 4

		m.chat.resize(contentWidth, vpHeight)
		m.input.ta.SetWidth(contentWidth - 4)
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+y":
			reply, ok := m.chat.buf.LastAssistant()
			if !ok {
				m.notice = "Nothing to copy yet"
				return m, nil
			}
			return m, m.copyReply(reply.Text)

		case widget.KeyEnter:
			return m.submit()
		}

	case replyMsg:
		m.widget.Finish(msg.ex, msg.res)
		m.err = msg.res.Err
		if m.widget.InFlight() == 0 {
			m.notice = ""
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.logger.Warn("clipboard write failed", zap.Error(msg.err))
			m.notice = "Copy failed: " + msg.err.Error()
		} else {
			m.notice = "Reply copied to clipboard"
		}
		return m, nil

	case spinner.TickMsg:
		if m.chat.buf.Loading() > 0 {
			m.spinner, cmd = m.spinner.Update(msg)
			m.chat.spin = m.spinner.View()
			m.chat.refresh()
			cmds = append(cmds, cmd)
		}
	}

	if _, ok := msg.(tea.KeyMsg); ok {
		m.input.ta, cmd = m.input.ta.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.chat.vp, cmd = m.chat.vp.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// clearTranscript empties the transcript once no reply is pending
func (m Model) clearTranscript() (tea.Model, tea.Cmd) {
	if m.widget.InFlight() > 0 {
		m.notice = "Wait for the pending reply before clearing"
		return m, nil
	}
	m.chat.clear()
	m.input.SetValue("")
	m.err = nil
	m.notice = "Transcript cleared"
	return m, nil
}

// submit starts a request cycle for the current input
func (m Model) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	// Plain words are sent like any other message
	switch value {
	case "/exit", "/quit":
		return m, tea.Quit
	case "/clear":
		return m.clearTranscript()
	}

	ex, err := m.widget.Begin(value)
	switch {
	case errors.Is(err, apierrors.ErrEmptyMessage):
		return m, nil
	case errors.Is(err, apierrors.ErrBusy):
		m.notice = "Still waiting for the previous reply"
		return m, nil
	case err != nil:
		m.err = err
		return m, nil
	}

	m.err = nil
	m.notice = ""
	return m, tea.Batch(
		m.fetch(ex),
		m.spinner.Tick,
	)
}

// fetch performs the request off the UI loop; Finish runs when replyMsg arrives
func (m Model) fetch(ex *widget.Exchange) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return replyMsg{ex: ex, res: ex.Fetch(ctx)}
	}
}

func (m Model) copyReply(text string) tea.Cmd {
	copyFunc := m.copyFunc
	return func() tea.Msg {
		return copiedMsg{err: copyFunc(text)}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{
		titleStyle.Render("✦ Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.client.Endpoint()),
	}
	if sid := m.client.SessionID(); sid != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			hintStyle.Render("session "+shortID(sid)),
		)
	}
	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...))
	sections = append(sections, header)

	// Messages
	var messagesContent string
	if m.chat.buf.HasWelcome() {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.chat.vp.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.chat.vp.Height).
		Render(messagesContent))

	// Input
	inputContent := lipgloss.JoinVertical(
		lipgloss.Left,
		inputLabelStyle.Render("You"),
		m.input.ta.View(),
	)
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, warningStyle.Render("  "+m.notice))
	}
	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen until the first send
func (m Model) renderWelcome() string {
	width := m.chat.vp.Width - 4
	height := m.chat.vp.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render(m.chat.buf.Welcome()),
		"",
		welcomeStyle.Width(width).Render("Type a message below and press Enter"),
		"",
	)

	topPadding := max((height-lipgloss.Height(content))/2, 0)
	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+Y", "Copy reply"},
		{"PgUp/PgDn", "Scroll"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}
	if n := m.widget.InFlight(); n > 0 {
		items = append(items, loadingStyle.Render(fmt.Sprintf("%d pending", n)))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// RunChat starts the chat TUI and blocks until the user quits
func RunChat(ctx context.Context, client api.ChatClientInterface, cfg config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		logger.Warn("unknown TUI theme, using default", zap.String("theme", cfg.TUITheme))
	}
	UpdateTheme()

	m := NewChatModel(ctx, client, cfg, logger)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
