package transcript

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatwidget/internal/models"
)

func TestAppendPreservesOrder(t *testing.T) {
	b := NewBuffer()
	h1 := b.Append(models.UserMessage("Hello"))
	h2 := b.Append(models.PlaceholderMessage())

	assert.NotEqual(t, models.Handle(0), h1)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, []string{"You: Hello", "Assistant: Thinking..."}, b.Lines())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 1, b.Loading())
}

func TestRemoveByHandle(t *testing.T) {
	b := NewBuffer()
	b.Append(models.UserMessage("one"))
	first := b.Append(models.PlaceholderMessage())
	b.Append(models.UserMessage("two"))
	second := b.Append(models.PlaceholderMessage())

	// removing the earlier placeholder must not touch the later one
	require.True(t, b.Remove(first))
	assert.Equal(t, []string{"You: one", "You: two", "Assistant: Thinking..."}, b.Lines())

	_, ok := b.Get(first)
	assert.False(t, ok)
	msg, ok := b.Get(second)
	require.True(t, ok)
	assert.True(t, msg.Loading)

	assert.False(t, b.Remove(first), "second remove of the same handle")
	assert.False(t, b.Remove(models.Handle(999)))
	assert.False(t, b.Remove(0))
}

func TestWelcomeRemovedOnce(t *testing.T) {
	b := NewBuffer(WithWelcome("Welcome!"))
	assert.True(t, b.HasWelcome())
	assert.Equal(t, []string{"Welcome!"}, b.Lines())

	assert.True(t, b.RemoveWelcome())
	assert.False(t, b.HasWelcome())
	assert.Empty(t, b.Welcome())
	assert.False(t, b.RemoveWelcome())

	b.Append(models.UserMessage("hi"))
	b.Clear()
	assert.False(t, b.HasWelcome(), "clear must not restore the welcome marker")
}

func TestClear(t *testing.T) {
	b := NewBuffer(WithHeight(1))
	b.Append(models.UserMessage("a"))
	b.Append(models.AssistantMessage("b"))
	b.ScrollToBottom()
	require.Equal(t, 1, b.Offset())

	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Offset())
	assert.Empty(t, b.Lines())

	h := b.Append(models.UserMessage("c"))
	msg, ok := b.Get(h)
	require.True(t, ok)
	assert.Equal(t, "c", msg.Text)
}

func TestNoWelcome(t *testing.T) {
	b := NewBuffer()
	assert.False(t, b.HasWelcome())
	assert.False(t, b.RemoveWelcome())
	assert.Empty(t, b.Lines())
}

func TestScrollModel(t *testing.T) {
	b := NewBuffer(WithHeight(2))
	assert.Equal(t, 0, b.MaxOffset())
	assert.True(t, b.AtBottom())

	for i := 0; i < 5; i++ {
		b.Append(models.UserMessage(fmt.Sprintf("msg %d", i)))
	}
	assert.Equal(t, 3, b.MaxOffset())
	assert.False(t, b.AtBottom())

	b.ScrollToBottom()
	assert.Equal(t, 3, b.Offset())
	assert.True(t, b.AtBottom())

	b.SetHeight(10)
	assert.Equal(t, 0, b.Offset(), "offset clamps when the window grows")
	assert.True(t, b.AtBottom())
}

func TestMultilineMessagesCountAsLines(t *testing.T) {
	b := NewBuffer(WithHeight(1))
	b.Append(models.AssistantMessage("line one\nline two\nline three"))
	assert.Equal(t, 2, b.MaxOffset())

	b.ScrollToBottom()
	assert.Equal(t, 2, b.Offset())
}

func TestUnboundedHeight(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < 10; i++ {
		b.Append(models.UserMessage("x"))
	}
	b.ScrollToBottom()
	assert.Equal(t, 0, b.MaxOffset())
	assert.True(t, b.AtBottom())
	assert.Equal(t, 0, b.Offset())
}

func TestLastAssistant(t *testing.T) {
	b := NewBuffer()
	_, ok := b.LastAssistant()
	assert.False(t, ok)

	b.Append(models.AssistantMessage("first"))
	b.Append(models.UserMessage("q"))
	b.Append(models.PlaceholderMessage())

	msg, ok := b.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "first", msg.Text, "placeholders are skipped")
}

func TestMessagesReturnsCopy(t *testing.T) {
	b := NewBuffer()
	b.Append(models.UserMessage("a"))

	msgs := b.Messages()
	msgs[0].Text = "mutated"
	assert.Equal(t, "You: a", b.String())
}

func TestConcurrentAppendRemove(t *testing.T) {
	b := NewBuffer(WithHeight(3))
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := b.Append(models.PlaceholderMessage())
			b.ScrollToBottom()
			b.Remove(h)
			b.Append(models.AssistantMessage("done"))
			b.ScrollToBottom()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, b.Len())
	assert.Equal(t, 0, b.Loading())
	assert.True(t, b.AtBottom())
}

func TestEntries(t *testing.T) {
	b := NewBuffer()
	h1 := b.Append(models.UserMessage("a"))
	h2 := b.Append(models.AssistantMessage("b"))

	entries := b.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Handle: h1, Message: models.UserMessage("a")}, entries[0])
	assert.Equal(t, h2, entries[1].Handle)
}
