package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
)

// Chat posts message to /chat and returns the reply text.
// The body must be JSON with a string "reply"; anything else is an error.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", apierrors.ErrEmptyMessage
	}

	payload, err := json.Marshal(models.ChatRequest{
		Message:   message,
		SessionID: c.sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, models.PathChat, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	reply, err := parseChatResponse(body)
	if err != nil {
		c.logger.Warn("unusable chat response", zap.Error(err))
		return "", err
	}
	return reply, nil
}

// parseChatResponse validates the /chat body and extracts the reply
func parseChatResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not valid JSON", models.PathChat)
	}

	reply := gjson.GetBytes(body, PathReply)
	if !reply.Exists() || reply.Type != gjson.String {
		return "", apierrors.NewReplyError(models.PathChat, truncate(string(body), 512))
	}
	return reply.String(), nil
}
