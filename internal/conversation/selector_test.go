// ABOUTME: Tests for the active-conversation selector
// ABOUTME: Verifies reset-on-select, single-active invariant, and persistence

package conversation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/internal/store"
)

// memState is an in-memory StateStore with JSON round-tripping, mirroring
// what the SQLite store does with its value column.
type memState struct {
	values map[string][]byte
}

func newMemState() *memState {
	return &memState{values: make(map[string][]byte)}
}

func (m *memState) Put(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = data
	return nil
}

func (m *memState) Get(_ context.Context, key string, out any) error {
	data, ok := m.values[key]
	if !ok {
		return store.ErrNotFound
	}
	return json.Unmarshal(data, out)
}

func (m *memState) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func newTestSelector(t *testing.T) (*Selector, *Tracker, *memState) {
	t.Helper()
	state := newMemState()
	sel := NewSelector(state, nil)
	tr := NewTracker(sel, nil)
	sel.SetTracker(tr)
	return sel, tr, state
}

func TestSelector_SelectResetsUnread(t *testing.T) {
	sel, tr, _ := newTestSelector(t)
	ctx := context.Background()

	tr.Increment("a")
	tr.Increment("a")
	require.Equal(t, 2, tr.CountFor("a"))

	err := sel.Select(ctx, Conversation{ID: "a"})
	require.NoError(t, err)

	assert.Equal(t, 0, tr.CountFor("a"))
}

func TestSelector_AtMostOneActive(t *testing.T) {
	sel, tr, _ := newTestSelector(t)
	ctx := context.Background()

	tr.Increment("first")
	require.NoError(t, sel.Select(ctx, Conversation{ID: "first"}))
	require.NoError(t, sel.Select(ctx, Conversation{ID: "second"}))

	current, ok := sel.Current()
	require.True(t, ok)
	assert.Equal(t, "second", current.ID)

	// Deactivating "first" did not touch its unread state.
	tr.Increment("first")
	assert.Equal(t, 1, tr.CountFor("first"))
}

func TestSelector_CurrentEmptyBeforeSelect(t *testing.T) {
	sel, _, _ := newTestSelector(t)

	_, ok := sel.Current()
	assert.False(t, ok)
	_, ok = sel.ActiveID()
	assert.False(t, ok)
}

func TestSelector_PersistsAndRestores(t *testing.T) {
	sel, _, state := newTestSelector(t)
	ctx := context.Background()

	conv := Conversation{ID: "c1", User: User{Username: "alice", DisplayName: "Alice"}}
	require.NoError(t, sel.Select(ctx, conv))

	// A fresh selector over the same state restores the selection.
	restored := NewSelector(state, nil)
	require.NoError(t, restored.Restore(ctx))

	current, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, "c1", current.ID)
	assert.Equal(t, "alice", current.User.Username)
}

func TestSelector_RestoreMissingIsNotError(t *testing.T) {
	sel, _, _ := newTestSelector(t)

	require.NoError(t, sel.Restore(context.Background()))
	_, ok := sel.Current()
	assert.False(t, ok)
}

func TestSelector_ClearRemovesSelection(t *testing.T) {
	sel, _, state := newTestSelector(t)
	ctx := context.Background()

	require.NoError(t, sel.Select(ctx, Conversation{ID: "c1"}))
	require.NoError(t, sel.Clear(ctx))

	_, ok := sel.Current()
	assert.False(t, ok)
	assert.NotContains(t, state.values, store.KeyCurrConversation)
}
