// Package conversation holds the client-side conversation state machine.
//
// # Overview
//
// The package owns three pieces of state, each mutated only through its
// owning type:
//
//   - Tracker: per-conversation unread counters
//   - Selector: the single active (open) conversation
//   - Synchronizer: the published, ordered conversation list
//
// # Synchronization
//
// The Synchronizer re-fetches the full conversation list whenever the
// refresh signal fires. Every fetch is tagged with a monotonically
// increasing sequence number; a completion that is no longer the newest
// issued fetch is discarded, so a slow stale response can never overwrite
// a fresher one. Each successful fetch replaces the published list
// wholesale after two local steps:
//
//  1. Merge: unread counts are joined onto the server snapshot by
//     conversation ID. Unread state is client-local; the server payload
//     does not carry it.
//  2. Order: conversations with a last message sort first, newest first.
//     Conversations without one keep their server-relative order at the
//     tail. The sort is stable, so equal timestamps keep server order.
//
// A failed fetch leaves the previously published list untouched and
// reports through the error handler instead of publishing an empty list.
//
// # Unread counters
//
// Tracker counters survive list replacement: membership comes from the
// server, counts come from the client. Incrementing the active
// conversation is a no-op, since the conversation on screen is never
// unread. Selecting a conversation resets its counter to zero.
package conversation
