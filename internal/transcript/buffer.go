// Package transcript provides an in-memory transcript container.
package transcript

import (
	"strings"
	"sync"

	"github.com/diogo/chatwidget/internal/models"
)

// DefaultWelcome is the text of the one-time welcome marker
const DefaultWelcome = "Welcome! Ask me anything to get started."

type node struct {
	handle models.Handle
	msg    models.Message
}

// Buffer is an ordered, thread-safe list of transcript nodes with a
// line-based scroll model. Insertion order is display order.
type Buffer struct {
	mu      sync.RWMutex
	nodes   []node
	next    models.Handle
	welcome string
	height  int
	offset  int
}

// Option configures a Buffer
type Option func(*Buffer)

// WithWelcome starts the buffer with a welcome marker showing text
func WithWelcome(text string) Option {
	return func(b *Buffer) {
		b.welcome = text
	}
}

// WithHeight sets the number of visible lines. Zero means unbounded.
func WithHeight(lines int) Option {
	return func(b *Buffer) {
		b.height = max(lines, 0)
	}
}

// NewBuffer creates an empty buffer
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RemoveWelcome drops the welcome marker. Returns false if there was none.
func (b *Buffer) RemoveWelcome() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.welcome == "" {
		return false
	}
	b.welcome = ""
	b.clampLocked()
	return true
}

// HasWelcome reports whether the welcome marker is still shown
func (b *Buffer) HasWelcome() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.welcome != ""
}

// Welcome returns the welcome marker text, or "" once removed
func (b *Buffer) Welcome() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.welcome
}

// Append adds msg at the end and returns its handle
func (b *Buffer) Append(msg models.Message) models.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	b.nodes = append(b.nodes, node{handle: b.next, msg: msg})
	return b.next
}

// Remove deletes the node identified by h. Returns false if h is unknown.
func (b *Buffer) Remove(h models.Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, n := range b.nodes {
		if n.handle == h {
			b.nodes = append(b.nodes[:i], b.nodes[i+1:]...)
			b.clampLocked()
			return true
		}
	}
	return false
}

// Get returns the message identified by h
func (b *Buffer) Get(h models.Handle) (models.Message, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, n := range b.nodes {
		if n.handle == h {
			return n.msg, true
		}
	}
	return models.Message{}, false
}

// Clear removes every message. The welcome marker is not restored.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nodes = nil
	b.offset = 0
}

// Messages returns a copy of the messages in display order
func (b *Buffer) Messages() []models.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Message, len(b.nodes))
	for i, n := range b.nodes {
		out[i] = n.msg
	}
	return out
}

// Entry is a message together with its handle
type Entry struct {
	Handle  models.Handle
	Message models.Message
}

// Entries returns a copy of the nodes in display order
func (b *Buffer) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, len(b.nodes))
	for i, n := range b.nodes {
		out[i] = Entry{Handle: n.handle, Message: n.msg}
	}
	return out
}

// Len returns the number of messages, excluding the welcome marker
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.nodes)
}

// Loading returns how many placeholder nodes are present
func (b *Buffer) Loading() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, n := range b.nodes {
		if n.msg.Loading {
			count++
		}
	}
	return count
}

// LastAssistant returns the most recent settled assistant message
func (b *Buffer) LastAssistant() (models.Message, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := len(b.nodes) - 1; i >= 0; i-- {
		if msg := b.nodes[i].msg; msg.IsAssistant() && !msg.Loading {
			return msg, true
		}
	}
	return models.Message{}, false
}

// SetHeight changes the number of visible lines and keeps the offset in range
func (b *Buffer) SetHeight(lines int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.height = max(lines, 0)
	b.clampLocked()
}

// ScrollToBottom moves the offset to its maximum
func (b *Buffer) ScrollToBottom() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offset = b.maxOffsetLocked()
}

// Offset returns the current scroll offset in lines
func (b *Buffer) Offset() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offset
}

// MaxOffset returns the largest valid scroll offset
func (b *Buffer) MaxOffset() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.maxOffsetLocked()
}

// AtBottom reports whether the offset equals MaxOffset
func (b *Buffer) AtBottom() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offset == b.maxOffsetLocked()
}

// Lines renders the transcript as plain text lines
func (b *Buffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.linesLocked()
}

// String renders the whole transcript
func (b *Buffer) String() string {
	return strings.Join(b.Lines(), "\n")
}

// FormatMessage renders one message as "<Label>: <text>"
func FormatMessage(msg models.Message) string {
	return msg.Sender.Label() + ": " + msg.Text
}

func (b *Buffer) linesLocked() []string {
	var lines []string
	if b.welcome != "" {
		lines = append(lines, strings.Split(b.welcome, "\n")...)
	}
	for _, n := range b.nodes {
		lines = append(lines, strings.Split(FormatMessage(n.msg), "\n")...)
	}
	return lines
}

func (b *Buffer) maxOffsetLocked() int {
	if b.height == 0 {
		return 0
	}
	return max(len(b.linesLocked())-b.height, 0)
}

func (b *Buffer) clampLocked() {
	b.offset = min(max(b.offset, 0), b.maxOffsetLocked())
}
