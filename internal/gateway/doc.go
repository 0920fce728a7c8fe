// Package gateway performs session-authenticated HTTP requests.
//
// # Overview
//
// The Gateway is the single path every network-touching component uses. It
// merges the caller's headers with the Authorization header carrying the
// current session token, sends the request, and centralizes the
// authenticated-request failure taxonomy:
//
//   - ErrUnauthenticated: no token held; the request is never sent
//   - ErrAuthRejected: the server answered 401/403; callers must clear the
//     session and route to login rather than treating the body as a result
//   - ErrConflict: the server answered 409 (duplicate identifier)
//   - *RequestError: the request could not complete (transient network
//     failure); previously published state should be retained
//
// Other status codes are returned in the Response for the caller to
// interpret. The gateway sends each request exactly once; there is no retry
// or token-refresh loop.
package gateway
