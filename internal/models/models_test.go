package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSenderString(t *testing.T) {
	tests := []struct {
		sender Sender
		want   string
		label  string
	}{
		{SenderUser, "user", "You"},
		{SenderAssistant, "assistant", "Assistant"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sender.String())
			assert.Equal(t, tt.label, tt.sender.Label())
		})
	}

	assert.Equal(t, "unknown", Sender(42).String())
}

func TestMessageConstructors(t *testing.T) {
	u := UserMessage("Hello")
	assert.Equal(t, SenderUser, u.Sender)
	assert.False(t, u.IsAssistant())
	assert.False(t, u.Loading)

	p := PlaceholderMessage()
	assert.True(t, p.IsAssistant())
	assert.True(t, p.Loading)
	assert.Equal(t, "Thinking...", p.Text)

	a := AssistantMessage("Hi there")
	assert.True(t, a.IsAssistant())
	assert.False(t, a.Loading)
}

func TestHealthResponseHealthy(t *testing.T) {
	assert.True(t, HealthResponse{Status: "healthy"}.Healthy())
	assert.False(t, HealthResponse{Status: "degraded"}.Healthy())
	assert.False(t, HealthResponse{}.Healthy())
}
