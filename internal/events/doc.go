// Package events maintains the websocket connection that pushes server-side
// activity to the client. A message event for a background conversation bumps
// its unread count and raises the refresh signal so the conversation list is
// re-fetched.
package events
