// ABOUTME: API client wrapping the gateway with one method per service operation
// ABOUTME: Holds no state beyond the gateway and a component logger

package client

import (
	"log/slog"

	"github.com/parley-chat/parley/internal/gateway"
)

// Client exposes the chat service operations.
type Client struct {
	gw     *gateway.Gateway
	logger *slog.Logger
}

// New creates a client over gw. Pass nil logger for default.
func New(gw *gateway.Gateway, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		gw:     gw,
		logger: logger.With("component", "client"),
	}
}
