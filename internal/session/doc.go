// Package session owns the authentication session for the client.
//
// # Overview
//
// A Session is the credential attached to outbound requests plus the user it
// belongs to. The Manager walks a two-state machine:
//
//	NoSession -> Authenticated   (Login)
//	Authenticated -> NoSession   (Logout, or the server rejecting the token)
//
// The session persists across restarts through the local state store under
// the "currentUser" key; Restore loads it at startup and a missing record
// means the user must authenticate first.
//
// # Token expiry
//
// The token is opaque to the protocol, but when it happens to be a JWT the
// manager reads its exp claim without verifying the signature, purely to
// fail fast with ErrExpired before wasting a network round trip. The server
// remains the authority on token validity.
package session
