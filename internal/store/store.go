// ABOUTME: Store interface, stable state keys, and sentinel errors
// ABOUTME: Values are serialized JSON records under stable string keys

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested key has no stored value.
var ErrNotFound = errors.New("not found")

// Stable keys for persisted local state.
const (
	// KeyCurrentUser holds the session record: token and current user.
	KeyCurrentUser = "currentUser"

	// KeyCurrConversation holds the active conversation.
	KeyCurrConversation = "currConversation"
)

// Store defines JSON key/value persistence for client-local state.
type Store interface {
	// Put serializes value as JSON and stores it under key, replacing any
	// previous value.
	Put(ctx context.Context, key string, value any) error

	// Get loads the value stored under key into out. Returns ErrNotFound
	// when the key is absent.
	Get(ctx context.Context, key string, out any) error

	// Delete removes the value under key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
