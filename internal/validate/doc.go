// Package validate implements registration and login field validation.
//
// Field rules match what the chat service enforces: usernames are at least
// six alphanumerics, display names at least six characters of letters,
// digits and inner spaces, and passwords need length eight with lower- and
// upper-case letters, a digit and a symbol.
//
// Validation errors are fully handled at the point of detection: they come
// back as an Errors map keyed by field name, ready to show next to the
// offending field, and never propagate further.
package validate
