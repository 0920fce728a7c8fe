// ABOUTME: Session state machine holding the auth token and current user
// ABOUTME: Persists across restarts via the local state store, cleared on logout

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parley-chat/parley/internal/conversation"
	"github.com/parley-chat/parley/internal/store"
)

// Session errors
var (
	// ErrNoSession means no session is held; the user must authenticate.
	ErrNoSession = errors.New("no session")

	// ErrExpired means the held token's exp claim has passed.
	ErrExpired = errors.New("session expired")
)

// Session is the persisted credential and the user it identifies.
type Session struct {
	Token string            `json:"token"`
	User  conversation.User `json:"user"`
}

// Manager owns the Session. All reads and transitions go through it.
type Manager struct {
	mu      sync.Mutex
	session *Session
	state   store.Store
	logger  *slog.Logger
}

// NewManager creates a manager persisting through state. Pass nil logger for
// default.
func NewManager(state store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		state:  state,
		logger: logger.With("component", "session"),
	}
}

// Restore loads a persisted session from a previous run. Returns ErrNoSession
// when none is stored.
func (m *Manager) Restore(ctx context.Context) error {
	var sess Session
	if err := m.state.Get(ctx, store.KeyCurrentUser, &sess); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoSession
		}
		return fmt.Errorf("restoring session: %w", err)
	}

	m.mu.Lock()
	m.session = &sess
	m.mu.Unlock()

	m.logger.Info("session restored", "username", sess.User.Username)
	return nil
}

// Login transitions NoSession -> Authenticated and persists the session.
func (m *Manager) Login(ctx context.Context, token string, user conversation.User) error {
	sess := Session{Token: token, User: user}

	if err := m.state.Put(ctx, store.KeyCurrentUser, sess); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	m.mu.Lock()
	m.session = &sess
	m.mu.Unlock()

	m.logger.Info("logged in", "username", user.Username)
	return nil
}

// Logout transitions Authenticated -> NoSession and removes the persisted
// session. Also the path taken when the server rejects the token.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	if err := m.state.Delete(ctx, store.KeyCurrentUser); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	m.logger.Info("logged out")
	return nil
}

// Token returns the held credential. ErrNoSession when none is held,
// ErrExpired when the token is a JWT whose exp claim has passed.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	sess := m.session
	m.mu.Unlock()

	if sess == nil {
		return "", ErrNoSession
	}
	if exp, ok := tokenExpiry(sess.Token); ok && time.Now().After(exp) {
		return "", ErrExpired
	}
	return sess.Token, nil
}

// CurrentUser returns the authenticated user, if any.
func (m *Manager) CurrentUser() (conversation.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return conversation.User{}, false
	}
	return m.session.User, true
}

// Authenticated reports whether a session is held. It does not consult the
// server; a held token may still be rejected on use.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// tokenExpiry reads the exp claim of a JWT without verifying its signature.
// Returns ok=false for opaque (non-JWT) tokens or tokens without exp.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
