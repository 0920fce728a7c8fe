// ABOUTME: Conversation list retrieval: GET Chats with the session token
// ABOUTME: Implements conversation.Lister for the synchronizer

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/parley-chat/parley/internal/conversation"
	"github.com/parley-chat/parley/internal/gateway"
)

// ListConversations fetches the full conversation snapshot. The server is
// authoritative for membership; unread counts are joined in locally by the
// synchronizer.
func (c *Client) ListConversations(ctx context.Context) ([]conversation.Conversation, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")

	resp, err := c.gw.Do(ctx, gateway.RequestSpec{
		Path:   "Chats",
		Method: http.MethodGet,
		Header: header,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing conversations: unexpected status %d", resp.StatusCode)
	}

	var convs []conversation.Conversation
	if err := resp.Decode(&convs); err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return convs, nil
}
