// ABOUTME: Session-authenticated HTTP request layer with a central failure taxonomy
// ABOUTME: Attaches the bearer token and maps 401/403/409 to sentinel errors

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// defaultTimeout bounds a single request round trip.
	defaultTimeout = 30 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 4 * 1024 * 1024
)

// Gateway errors
var (
	// ErrUnauthenticated means no session token is held. The request is not
	// sent; the user must authenticate first.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrAuthRejected means the server rejected the session token. The
	// caller must clear the session and route to login.
	ErrAuthRejected = errors.New("session rejected")

	// ErrConflict means the server reported a duplicate identifier (409).
	ErrConflict = errors.New("conflict")
)

// RequestError wraps a transport-level failure: the request could not
// complete and no response status is available. Recoverable; callers keep
// their previously published state.
type RequestError struct {
	Method string
	Path   string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// TokenSource supplies the current session token. The session manager
// implements it; any error it returns is surfaced as ErrUnauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// RequestSpec describes one outbound request. Path is relative to the
// gateway's base URL; Header entries are merged over the defaults.
type RequestSpec struct {
	Path   string
	Method string
	Header http.Header
	Body   []byte
}

// Response is a completed request's status code and fully read body.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body as JSON into out.
func (r *Response) Decode(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Gateway performs authenticated requests against one chat service.
type Gateway struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a gateway for the service at baseURL, drawing tokens from
// tokens. Pass nil logger for default.
func New(baseURL string, tokens TokenSource, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("component", "gateway"),
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests and by
// callers needing custom transport settings.
func (g *Gateway) WithHTTPClient(c *http.Client) *Gateway {
	g.httpClient = c
	return g
}

// Do sends one authenticated request described by spec. With no token held
// it fails with ErrUnauthenticated before any network activity. Statuses
// 401/403 map to ErrAuthRejected and 409 to ErrConflict; every other status
// is returned in the Response for the caller to interpret.
func (g *Gateway) Do(ctx context.Context, spec RequestSpec) (*Response, error) {
	token, err := g.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return g.send(ctx, spec, token)
}

// DoPublic sends a request without a session token. Only the login and
// registration operations use it; everything else goes through Do.
func (g *Gateway) DoPublic(ctx context.Context, spec RequestSpec) (*Response, error) {
	return g.send(ctx, spec, "")
}

func (g *Gateway) send(ctx context.Context, spec RequestSpec, token string) (*Response, error) {
	url := g.baseURL + "/" + strings.TrimPrefix(spec.Path, "/")

	var body io.Reader
	if spec.Body != nil {
		body = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Caller headers first, then the authorization header on top.
	for key, values := range spec.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if spec.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Method: spec.Method, Path: spec.Path, Err: err}
	}
	defer resp.Body.Close()

	data, err := readBody(resp.Body)
	if err != nil {
		return nil, &RequestError{Method: spec.Method, Path: spec.Path, Err: err}
	}

	g.logger.Debug("request completed",
		"method", spec.Method,
		"path", spec.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrAuthRejected, errorMessage(data, resp.StatusCode))
	case http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", ErrConflict, errorMessage(data, resp.StatusCode))
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// readBody reads at most maxResponseSize bytes of the response body.
func readBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(data)) == maxResponseSize {
		return nil, fmt.Errorf("response exceeded %d bytes", maxResponseSize)
	}
	return data, nil
}

// errorMessage extracts a server-supplied {"error": "..."} message, falling
// back to the status text.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return http.StatusText(status)
}
