// ABOUTME: Tests for session-ending error classification and text helpers
// ABOUTME: Covers the expired-persisted-token path that must route to login

package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/internal/conversation"
	"github.com/parley-chat/parley/internal/gateway"
	"github.com/parley-chat/parley/internal/session"
	"github.com/parley-chat/parley/internal/store"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ada",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// An expired persisted session still counts as "authenticated" locally, but
// every gateway call fails before the network with ErrUnauthenticated. That
// error must be treated as session-ending, or the app would retry forever
// instead of routing to login.
func TestExpiredSessionErrorIsSessionEnding(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer st.Close()

	sessions := session.NewManager(st, nil)
	expired := signedToken(t, time.Now().Add(-time.Hour))
	require.NoError(t, sessions.Login(context.Background(), expired, conversation.User{Username: "ada"}))

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	gw := gateway.New(srv.URL, sessions, nil)
	_, err = gw.Do(context.Background(), gateway.RequestSpec{Path: "Chats", Method: http.MethodGet})

	require.Error(t, err)
	assert.True(t, sessions.Authenticated(), "session record is still held locally")
	assert.Zero(t, calls.Load(), "no network call for an expired token")
	assert.ErrorIs(t, err, gateway.ErrUnauthenticated)
	assert.False(t, errors.Is(err, gateway.ErrAuthRejected))
	assert.True(t, sessionEnding(err))
}

func TestSessionEnding(t *testing.T) {
	assert.True(t, sessionEnding(gateway.ErrAuthRejected))
	assert.True(t, sessionEnding(gateway.ErrUnauthenticated))
	assert.False(t, sessionEnding(errors.New("connection refused")))
	assert.False(t, sessionEnding(gateway.ErrConflict))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijk", 10))

	// Multi-byte text is cut on rune boundaries, never mid-character.
	got := truncate("こんにちは世界、今日は良い天気", 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "こんにちは世界...", got)
}
