// ABOUTME: Single source of truth for the currently open conversation
// ABOUTME: Selection resets the unread counter and persists across restarts

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/parley-chat/parley/internal/store"
)

// StateStore is the subset of local state persistence the selector needs.
type StateStore interface {
	Put(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string, out any) error
	Delete(ctx context.Context, key string) error
}

// Selector holds the currently open conversation. At most one conversation
// is active at a time; selecting a new one replaces the previous one without
// touching the previous one's unread state.
type Selector struct {
	mu      sync.Mutex
	current *Conversation
	tracker *Tracker
	state   StateStore
	logger  *slog.Logger
}

// NewSelector creates a selector persisting through state. Pass nil logger
// for default. Wire the returned selector into the tracker via NewTracker.
func NewSelector(state StateStore, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		state:  state,
		logger: logger.With("component", "selector"),
	}
}

// SetTracker wires the tracker whose counter is reset on selection. Set once
// during wiring; the tracker itself needs the selector first.
func (s *Selector) SetTracker(t *Tracker) {
	s.tracker = t
}

// Select makes conv the active conversation, resets its unread counter and
// persists the selection so a restart restores it.
func (s *Selector) Select(ctx context.Context, conv Conversation) error {
	s.mu.Lock()
	c := conv
	s.current = &c
	s.mu.Unlock()

	if s.tracker != nil {
		s.tracker.Reset(conv.ID)
	}

	if err := s.state.Put(ctx, store.KeyCurrConversation, conv); err != nil {
		return fmt.Errorf("persisting active conversation: %w", err)
	}

	s.logger.Debug("conversation selected", "conversation_id", conv.ID)
	return nil
}

// Current returns the active conversation, if one is open.
func (s *Selector) Current() (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Conversation{}, false
	}
	return *s.current, true
}

// ActiveID implements ActiveProvider for the tracker.
func (s *Selector) ActiveID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.ID, true
}

// Clear deactivates the current conversation and removes the persisted
// selection. Called on logout.
func (s *Selector) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.state.Delete(ctx, store.KeyCurrConversation); err != nil {
		return fmt.Errorf("clearing active conversation: %w", err)
	}
	return nil
}

// Restore loads the persisted selection from a previous run. A missing
// record is not an error; the selector simply starts with nothing open.
func (s *Selector) Restore(ctx context.Context) error {
	var conv Conversation
	if err := s.state.Get(ctx, store.KeyCurrConversation, &conv); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("restoring active conversation: %w", err)
	}

	s.mu.Lock()
	s.current = &conv
	s.mu.Unlock()

	s.logger.Debug("conversation restored", "conversation_id", conv.ID)
	return nil
}
