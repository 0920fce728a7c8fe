// ABOUTME: Unread-message counters keyed by conversation ID
// ABOUTME: Counters are client-local and survive conversation list replacement

package conversation

import (
	"log/slog"
	"sync"
)

// ActiveProvider reports which conversation is currently open, if any.
// The Selector implements it.
type ActiveProvider interface {
	ActiveID() (string, bool)
}

// Tracker maintains unread-message counters per conversation. It is mutated
// by incoming-message events and cleared by selection changes; the
// synchronizer only reads it.
type Tracker struct {
	mu     sync.Mutex
	counts map[string]int
	active ActiveProvider
	logger *slog.Logger
}

// NewTracker creates a tracker. active may be nil, in which case every
// increment counts. Pass nil logger for default.
func NewTracker(active ActiveProvider, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		counts: make(map[string]int),
		active: active,
		logger: logger.With("component", "tracker"),
	}
}

// Increment adds one to the counter for id. Incrementing the active
// conversation is a no-op: the conversation being viewed is never unread.
func (t *Tracker) Increment(id string) {
	if t.active != nil {
		if activeID, ok := t.active.ActiveID(); ok && activeID == id {
			return
		}
	}

	t.mu.Lock()
	t.counts[id]++
	n := t.counts[id]
	t.mu.Unlock()

	t.logger.Debug("unread incremented", "conversation_id", id, "count", n)
}

// Reset sets the counter for id back to zero.
func (t *Tracker) Reset(id string) {
	t.mu.Lock()
	delete(t.counts, id)
	t.mu.Unlock()
}

// CountFor returns the current counter for id, zero for an unseen id.
func (t *Tracker) CountFor(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[id]
}
