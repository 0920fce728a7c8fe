// ABOUTME: Conversation list synchronizer: fetch, merge unread counts, order, publish
// ABOUTME: Sequence numbers per fetch discard stale responses racing fresh ones

package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Lister fetches the full conversation snapshot from the server. The API
// client implements it.
type Lister interface {
	ListConversations(ctx context.Context) ([]Conversation, error)
}

// Counter reads unread counts by conversation ID. The Tracker implements it.
type Counter interface {
	CountFor(id string) int
}

// Synchronizer produces the ordered, merged conversation list shown to the
// user. Each refresh replaces the published list wholesale; there are no
// incremental patches.
type Synchronizer struct {
	lister Lister
	counts Counter
	logger *slog.Logger

	mu        sync.Mutex
	seq       uint64
	current   []Conversation
	listeners []func([]Conversation)
	onError   func(error)
}

// NewSynchronizer creates a synchronizer. Pass nil logger for default.
func NewSynchronizer(lister Lister, counts Counter, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		lister: lister,
		counts: counts,
		logger: logger.With("component", "sync"),
	}
}

// Subscribe registers fn to receive every published list. If a list has
// already been published, fn runs immediately with the current snapshot.
func (s *Synchronizer) Subscribe(fn func([]Conversation)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if snapshot != nil {
		fn(snapshot)
	}
}

// SetErrorHandler registers fn to receive fetch failures. Failures never
// clear the published list; they are reported here instead.
func (s *Synchronizer) SetErrorHandler(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// Refresh issues one authenticated fetch of the conversation list and, if
// the result is still the newest one issued, merges, orders and publishes
// it. A result superseded by a later Refresh or by Invalidate is discarded
// without publishing.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	convs, err := s.lister.ListConversations(ctx)
	if err != nil {
		s.mu.Lock()
		newest := s.seq
		s.mu.Unlock()
		// A superseded fetch stays silent even when it fails: the session
		// or list it belonged to is already gone.
		if seq != newest {
			s.logger.Debug("stale fetch discarded", "seq", seq, "newest", newest)
			return nil
		}
		err = fmt.Errorf("fetching conversations: %w", err)
		s.report(err)
		return err
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug("stale fetch discarded", "seq", seq, "newest", s.seq)
		return nil
	}

	for i := range convs {
		convs[i].UnreadCount = s.counts.CountFor(convs[i].ID)
	}
	Order(convs)

	s.current = convs
	listeners := make([]func([]Conversation), len(s.listeners))
	copy(listeners, s.listeners)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("conversation list published", "seq", seq, "count", len(snapshot))
	for _, fn := range listeners {
		fn(snapshot)
	}
	return nil
}

// Invalidate supersedes every in-flight fetch and drops the published list.
// Called on logout so a completion for the old session can never publish.
func (s *Synchronizer) Invalidate() {
	s.mu.Lock()
	s.seq++
	s.current = nil
	s.mu.Unlock()
}

// Snapshot returns a copy of the most recently published list, nil if
// nothing has been published.
func (s *Synchronizer) Snapshot() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked copies the current list. Caller holds mu.
func (s *Synchronizer) snapshotLocked() []Conversation {
	if s.current == nil {
		return nil
	}
	out := make([]Conversation, len(s.current))
	copy(out, s.current)
	return out
}

// report delivers err to the registered error handler, if any.
func (s *Synchronizer) report(err error) {
	s.mu.Lock()
	fn := s.onError
	s.mu.Unlock()

	s.logger.Warn("refresh failed", "error", err)
	if fn != nil {
		fn(err)
	}
}
