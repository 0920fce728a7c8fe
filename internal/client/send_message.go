// ABOUTME: Message send: POST Chats/{id}/Messages with a client-generated ID
// ABOUTME: The client ID lets the server dedupe retried sends

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/parley-chat/parley/internal/gateway"
)

type sendMessageRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// SendMessage posts content to a conversation and returns the client-assigned
// message ID.
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (string, error) {
	if conversationID == "" {
		return "", fmt.Errorf("send message: conversation id is empty")
	}

	id := uuid.NewString()
	body, err := json.Marshal(sendMessageRequest{ID: id, Content: content})
	if err != nil {
		return "", fmt.Errorf("encoding message: %w", err)
	}

	resp, err := c.gw.Do(ctx, gateway.RequestSpec{
		Path:   "Chats/" + url.PathEscape(conversationID) + "/Messages",
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("send message: unexpected status %d", resp.StatusCode)
	}

	c.logger.Debug("message sent", "conversation", conversationID, "message", id)
	return id, nil
}
