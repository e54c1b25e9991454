package render

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/models"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 80, opts.Width)
	assert.Equal(t, StyleDark, opts.Style)
	assert.True(t, opts.EnableEmoji)
	assert.True(t, opts.PreserveNewLines)

	wide := opts.WithWidth(120).WithStyle(StyleLight)
	assert.Equal(t, 120, wide.Width)
	assert.Equal(t, StyleLight, wide.Style)
	assert.Equal(t, 80, opts.Width, "With* must not mutate the receiver")
}

func TestFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")
	opts := FromConfig(config.MarkdownConfig{Style: StyleNoTTY, EnableEmoji: false, PreserveNewLines: true})
	assert.Equal(t, StyleNoTTY, opts.Style)
	assert.False(t, opts.EnableEmoji)

	empty := FromConfig(config.MarkdownConfig{})
	assert.Equal(t, StyleDark, empty.Style)

	t.Setenv("GLAMOUR_STYLE", StyleASCII)
	assert.Equal(t, StyleASCII, FromConfig(config.MarkdownConfig{Style: StyleLight}).Style)
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("**bold** text", DefaultOptions().WithStyle(StyleNoTTY))
	require.NoError(t, err)
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "text")

	out, err = Markdown("# Title", DefaultOptions().WithStyle(StyleNoTTY).WithWidth(40))
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestReplyPassesFixedTextThrough(t *testing.T) {
	opts := DefaultOptions().WithStyle(StyleNoTTY)

	for _, msg := range []models.Message{
		models.PlaceholderMessage(),
		models.AssistantMessage(models.ConnectionErrorText),
		models.AssistantMessage(models.InvalidReplyText),
	} {
		assert.Equal(t, msg.Text, Reply(msg, opts))
	}

	rendered := Reply(models.AssistantMessage("kubectl get pods"), opts)
	assert.Contains(t, rendered, "kubectl get pods")
}

func TestReplyFallsBackOnBadStyle(t *testing.T) {
	msg := models.AssistantMessage("hello")
	assert.Equal(t, "hello", Reply(msg, DefaultOptions().WithStyle("/does/not/exist.json")))
}

func TestCacheKey(t *testing.T) {
	base := DefaultOptions()
	assert.NotEqual(t, cacheKey(base), cacheKey(base.WithWidth(100)))
	assert.NotEqual(t, cacheKey(base), cacheKey(base.WithStyle(StyleLight)))
	assert.Equal(t, cacheKey(base), cacheKey(DefaultOptions()))
}

func TestPoolReuse(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions().WithStyle(StyleNoTTY)
	renderer, err := globalPool.get(opts)
	require.NoError(t, err)
	require.NotNil(t, renderer)
	globalPool.put(opts, renderer)
	globalPool.put(opts, nil)

	_, err = Markdown("x", opts)
	require.NoError(t, err)
	_, err = Markdown("x", opts.WithWidth(40))
	require.NoError(t, err)
	assert.Equal(t, 2, CacheSize())
}

func TestConcurrentRender(t *testing.T) {
	opts := DefaultOptions().WithStyle(StyleNoTTY)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Markdown("- item\n- item", opts)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestStyles(t *testing.T) {
	assert.True(t, IsStandardStyle(StyleDark))
	assert.True(t, IsStandardStyle(StyleTokyoNight))
	assert.False(t, IsStandardStyle("/tmp/theme.json"))
	assert.Len(t, AvailableStyles(), 6)
}
