// ABOUTME: Process-wide boolean-edge refresh signal with ordered observers
// ABOUTME: Raise flips the value and notifies every observer exactly once per flip

package signal

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Refresh is a shared boolean edge-triggered flag. Any number of producers
// call Raise; any number of consumers register handlers with Observe without
// being coupled to each other.
type Refresh struct {
	mu        sync.Mutex
	value     bool
	order     []string
	observers map[string]func()
	logger    *slog.Logger
}

// NewRefresh creates a refresh signal. Pass nil logger for default.
func NewRefresh(logger *slog.Logger) *Refresh {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresh{
		observers: make(map[string]func()),
		logger:    logger.With("component", "refresh"),
	}
}

// Observe registers handler to run on every flip of the signal, and runs it
// once immediately so a late subscriber converges to current state. Returns
// an observer ID for Remove.
func (r *Refresh) Observe(handler func()) string {
	id := uuid.New().String()

	r.mu.Lock()
	r.order = append(r.order, id)
	r.observers[id] = handler
	r.mu.Unlock()

	r.logger.Debug("observer added", "observer_id", id)
	handler()
	return id
}

// Remove unregisters the observer with the given ID.
func (r *Refresh) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.observers[id]; !ok {
		return
	}
	delete(r.observers, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Raise flips the signal and runs every current observer exactly once, in
// the order they subscribed.
func (r *Refresh) Raise() {
	r.mu.Lock()
	r.value = !r.value
	handlers := make([]func(), 0, len(r.order))
	for _, id := range r.order {
		if h, ok := r.observers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}

// Value reports the current state of the flag. The value itself carries no
// meaning beyond supporting edge detection in tests.
func (r *Refresh) Value() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}
