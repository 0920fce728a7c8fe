// ABOUTME: Field-level validation for registration and login input
// ABOUTME: Errors are keyed by field name so they render next to the field

package validate

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Field names used as Errors keys.
const (
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldDisplayName = "displayName"
	FieldConfirm     = "confirm"
)

// Validation messages per field.
const (
	MsgUsernameInvalid    = "Username is invalid"
	MsgPasswordInvalid    = "Password is invalid"
	MsgDisplayNameInvalid = "Display Name is invalid"
	MsgConfirmMismatch    = "Confirm Password does not match password"
	MsgUsernameTaken      = "Username already exists"
)

var (
	usernameRe    = regexp.MustCompile(`^[a-zA-Z0-9]{6,}$`)
	displayNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ]{4,}[a-zA-Z0-9]$`)
)

// Errors maps field names to messages. A nil or empty map means the input
// validated.
type Errors map[string]string

// Error implements the error interface, joining field messages in field
// order.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return strings.Join(parts, "; ")
}

// Ok reports whether no field failed.
func (e Errors) Ok() bool { return len(e) == 0 }

// Registration validates the full registration form. The returned map holds
// a message for every failing field.
func Registration(username, password, displayName, confirm string) Errors {
	errs := Errors{}
	if !usernameRe.MatchString(username) {
		errs[FieldUsername] = MsgUsernameInvalid
	}
	if !passwordOK(password) {
		errs[FieldPassword] = MsgPasswordInvalid
	}
	if !displayNameRe.MatchString(displayName) {
		errs[FieldDisplayName] = MsgDisplayNameInvalid
	}
	if confirm != password {
		errs[FieldConfirm] = MsgConfirmMismatch
	}
	if errs.Ok() {
		return nil
	}
	return errs
}

// CheckField validates a single field as the user types. An empty value
// clears the field's error rather than reporting one.
func CheckField(field, value string) string {
	if value == "" {
		return ""
	}
	switch field {
	case FieldUsername:
		if !usernameRe.MatchString(value) {
			return MsgUsernameInvalid
		}
	case FieldPassword:
		if !passwordOK(value) {
			return MsgPasswordInvalid
		}
	case FieldDisplayName:
		if !displayNameRe.MatchString(value) {
			return MsgDisplayNameInvalid
		}
	}
	return ""
}

// passwordOK requires length 8 with lower, upper, digit and symbol. The
// service expresses this as a lookahead regex; RE2 has no lookaheads, so the
// classes are checked directly.
func passwordOK(s string) bool {
	if len(s) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
