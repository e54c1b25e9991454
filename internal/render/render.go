package render

import (
	"strings"

	"github.com/diogo/chatwidget/internal/models"
)

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// Reply renders an assistant message body. Placeholders and error bubbles
// are fixed strings and pass through unchanged; so does anything glamour
// rejects.
func Reply(msg models.Message, opts Options) string {
	if msg.Loading || isFixedText(msg.Text) {
		return msg.Text
	}

	rendered, err := Markdown(msg.Text, opts)
	if err != nil {
		return msg.Text
	}
	return strings.Trim(rendered, "\n")
}

func isFixedText(text string) bool {
	switch text {
	case models.PlaceholderText, models.ConnectionErrorText, models.InvalidReplyText:
		return true
	}
	return false
}
