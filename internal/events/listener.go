// ABOUTME: Websocket listener for server push events with reconnect and backoff
// ABOUTME: Message events feed the unread tracker and raise the refresh signal

package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single control-frame write.
	writeWait = 10 * time.Second

	// pongWait is how long we wait for a pong before the read deadline trips.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxEventSize caps a single inbound event frame.
	maxEventSize = 64 * 1024

	// initialBackoff and maxBackoff bound the reconnect delay.
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second

	// sessionRetryInterval is how often the listener checks for a session
	// while none is held.
	sessionRetryInterval = 2 * time.Second
)

// Event is one server push frame. Type "message" carries the conversation
// that received a new message.
type Event struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId"`
}

// TokenSource supplies the session token attached to the dial handshake.
type TokenSource interface {
	Token() (string, error)
}

// Incrementer receives unread bumps for background conversations.
type Incrementer interface {
	Increment(conversationID string)
}

// Raiser is poked whenever an event means the conversation list is stale.
type Raiser interface {
	Raise()
}

// Listener dials the event stream and dispatches events until closed. It
// reconnects with capped backoff after transport failures. While no session
// is held it waits quietly and dials once one appears, so starting logged
// out or logging back in after a rejection both resume push delivery.
type Listener struct {
	url     string
	tokens  TokenSource
	counts  Incrementer
	refresh Raiser
	logger  *slog.Logger

	dialer *websocket.Dialer

	// Wait tuning, shortened in tests.
	sessionRetry time.Duration
	backoffMin   time.Duration
	backoffMax   time.Duration

	// OnAuthRejected runs when the server refuses the handshake with 401 or
	// 403. A merely absent session does not fire it. Set before Run.
	OnAuthRejected func()
}

// NewListener creates a listener for the event stream at url.
func NewListener(url string, tokens TokenSource, counts Incrementer, refresh Raiser, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		url:          url,
		tokens:       tokens,
		counts:       counts,
		refresh:      refresh,
		logger:       logger.With("component", "events"),
		dialer:       websocket.DefaultDialer,
		sessionRetry: sessionRetryInterval,
		backoffMin:   initialBackoff,
		backoffMax:   maxBackoff,
	}
}

// WithDialer replaces the websocket dialer. Used by tests.
func (l *Listener) WithDialer(d *websocket.Dialer) *Listener {
	l.dialer = d
	return l
}

// Run connects and dispatches events until ctx is cancelled. Transport
// failures trigger reconnects; with no session held it waits for one.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.backoffMin
	for {
		connected, err := l.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = l.backoffMin
		}

		wait := backoff
		switch {
		case errors.Is(err, errNoSession):
			// Not an error state: check again soon so push resumes
			// promptly after login.
			wait = l.sessionRetry
		case errors.Is(err, errAuthRejected):
			l.logger.Warn("event stream handshake rejected")
			if l.OnAuthRejected != nil {
				l.OnAuthRejected()
			}
			backoff = min(backoff*2, l.backoffMax)
		default:
			l.logger.Debug("event stream disconnected", "error", err, "retry_in", wait)
			backoff = min(backoff*2, l.backoffMax)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

var (
	errNoSession    = errors.New("event stream: no session held")
	errAuthRejected = errors.New("event stream: handshake rejected")
)

func (l *Listener) connectAndRead(ctx context.Context) (bool, error) {
	token, err := l.tokens.Token()
	if err != nil {
		return false, errNoSession
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := l.dialer.DialContext(ctx, l.url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return false, errAuthRejected
		}
		return false, err
	}
	defer conn.Close()
	l.logger.Debug("event stream connected", "url", l.url)

	conn.SetReadLimit(maxEventSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Pinger keeps the connection alive; closing the connection unblocks the
	// read loop when ctx ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			l.logger.Warn("dropping malformed event", "error", err)
			continue
		}
		l.dispatch(ev)
	}
}

func (l *Listener) dispatch(ev Event) {
	switch ev.Type {
	case "message":
		if ev.ConversationID != "" {
			l.counts.Increment(ev.ConversationID)
		}
		l.refresh.Raise()
	case "conversation":
		l.refresh.Raise()
	default:
		l.logger.Debug("ignoring event", "type", ev.Type)
	}
}
