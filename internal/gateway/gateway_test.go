// ABOUTME: Tests for the session-authenticated gateway
// ABOUTME: Verifies header merge, failure taxonomy, and the no-token fast path

package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticTokens is a TokenSource with a fixed token or error.
type staticTokens struct {
	token string
	err   error
}

func (s *staticTokens) Token() (string, error) { return s.token, s.err }

func TestGateway_NoTokenNoNetworkCall(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	g := New(srv.URL, &staticTokens{err: errors.New("no session")}, nil)

	_, err := g.Do(context.Background(), RequestSpec{Path: "Chats", Method: http.MethodGet})

	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, int64(0), calls.Load(), "request must not reach the network without a token")
}

func TestGateway_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := New(srv.URL, &staticTokens{token: "tok-123"}, nil)

	header := http.Header{}
	header.Set("Accept", "application/json")
	resp, err := g.Do(context.Background(), RequestSpec{
		Path:   "Chats",
		Method: http.MethodGet,
		Header: header,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotAccept, "caller headers are merged, not dropped")
}

func TestGateway_AuthRejection(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid token"}`, status)
		}))

		g := New(srv.URL, &staticTokens{token: "stale"}, nil)
		resp, err := g.Do(context.Background(), RequestSpec{Path: "Chats", Method: http.MethodGet})

		assert.ErrorIs(t, err, ErrAuthRejected, "status %d", status)
		assert.Nil(t, resp, "a rejected request must not look like a success")
		assert.Contains(t, err.Error(), "invalid token")
		srv.Close()
	}
}

func TestGateway_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"username already exists"}`, http.StatusConflict)
	}))
	defer srv.Close()

	g := New(srv.URL, &staticTokens{token: "tok"}, nil)
	_, err := g.Do(context.Background(), RequestSpec{Path: "Users", Method: http.MethodPost, Body: []byte(`{}`)})

	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "username already exists")
}

func TestGateway_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	g := New(srv.URL, &staticTokens{token: "tok"}, nil)
	_, err := g.Do(context.Background(), RequestSpec{Path: "Chats", Method: http.MethodGet})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Chats", reqErr.Path)
}

func TestGateway_DefaultContentTypeForBody(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	g := New(srv.URL, &staticTokens{token: "tok"}, nil)
	_, err := g.Do(context.Background(), RequestSpec{
		Path:   "Users",
		Method: http.MethodPost,
		Body:   []byte(`{"username":"alice"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
}

func TestGateway_OtherStatusesReturnedToCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"nope"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	g := New(srv.URL, &staticTokens{token: "tok"}, nil)
	resp, err := g.Do(context.Background(), RequestSpec{Path: "Chats/42", Method: http.MethodGet})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGateway_DoPublicSendsWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	g := New(srv.URL, &staticTokens{err: errors.New("no session")}, nil)
	resp, err := g.DoPublic(context.Background(), RequestSpec{Path: "Tokens", Method: http.MethodPost, Body: []byte(`{}`)})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, gotAuth)
}

func TestResponse_Decode(t *testing.T) {
	resp := &Response{StatusCode: http.StatusOK, Body: []byte(`{"username":"alice"}`)}

	var out struct {
		Username string `json:"username"`
	}
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "alice", out.Username)

	bad := &Response{Body: []byte(`{`)}
	assert.Error(t, bad.Decode(&out))
}
