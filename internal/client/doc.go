// Package client implements the chat service API operations.
//
// # Overview
//
// One file per operation, all going through the gateway:
//
//   - ListConversations: GET Chats — the full conversation snapshot
//   - Login: POST Tokens — exchange credentials for a session token
//   - Register: POST Users — create an account
//   - SendMessage: POST Chats/{id}/Messages — append a message
//
// Login and Register are the only operations sent without a session token.
// A 409 from Register is surfaced as a field-level "Username already
// exists" error rather than a generic failure; auth rejections bubble up
// from the gateway as gateway.ErrAuthRejected.
package client
