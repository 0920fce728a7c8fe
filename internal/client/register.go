// ABOUTME: Account creation: POST Users, 409 becomes a field-level error
// ABOUTME: Callers validate the form first; this only adds the server-side check

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/parley-chat/parley/internal/gateway"
	"github.com/parley-chat/parley/internal/validate"
)

// RegisterRequest is the JSON body sent to POST Users. ProfilePic is a data
// URI or remote reference, as supplied by the image picker.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	ProfilePic  string `json:"profilePic,omitempty"`
}

// Register creates an account. A duplicate username comes back as a
// validate.Errors keyed on the username field, so it renders exactly like a
// local validation failure.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding registration: %w", err)
	}

	resp, err := c.gw.DoPublic(ctx, gateway.RequestSpec{
		Path:   "Users",
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			return validate.Errors{validate.FieldUsername: validate.MsgUsernameTaken}
		}
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("registration: unexpected status %d", resp.StatusCode)
	}

	c.logger.Debug("registration succeeded", "username", req.Username)
	return nil
}
