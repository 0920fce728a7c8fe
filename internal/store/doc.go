// Package store persists client-local state across restarts.
//
// # Overview
//
// The store is the stand-in for the browser's local storage: a small set of
// JSON records kept under stable keys in a SQLite database. It holds exactly
// the state that must survive a restart and is cleared on logout:
//
//   - "currentUser": the session record (token plus current user)
//   - "currConversation": the active conversation
//
// Absence of a key at startup is ErrNotFound, which callers treat as "route
// to login", never as a crash.
//
// # Usage
//
//	st, err := store.NewSQLiteStore(path)
//	...
//	err = st.Put(ctx, store.KeyCurrentUser, session)
//	err = st.Get(ctx, store.KeyCurrentUser, &session)
//	err = st.Delete(ctx, store.KeyCurrentUser)
package store
