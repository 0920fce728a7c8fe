// ABOUTME: Credential exchange: POST Tokens without a session token
// ABOUTME: Bad credentials surface as ErrBadCredentials, not a generic failure

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/parley-chat/parley/internal/conversation"
	"github.com/parley-chat/parley/internal/gateway"
)

// ErrBadCredentials means the username/password pair was not accepted.
var ErrBadCredentials = errors.New("invalid username or password")

// loginRequest is the JSON body sent to POST Tokens.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token string            `json:"token"`
	User  conversation.User `json:"user"`
}

// Login exchanges credentials for a session token. Sent without a token:
// there is no session yet.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encoding login request: %w", err)
	}

	resp, err := c.gw.DoPublic(ctx, gateway.RequestSpec{
		Path:   "Tokens",
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		// Without a session token there is nothing to reject; 401 here
		// means the credentials themselves were wrong.
		if errors.Is(err, gateway.ErrAuthRejected) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("login: unexpected status %d", resp.StatusCode)
	}

	var result LoginResult
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if result.Token == "" {
		return nil, errors.New("login: server returned no token")
	}

	c.logger.Debug("login succeeded", "username", result.User.Username)
	return &result, nil
}
