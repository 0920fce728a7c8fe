// ABOUTME: Tests for registration field validation
// ABOUTME: Covers each field rule, the confirm match, and empty-clears behavior

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistration_Valid(t *testing.T) {
	errs := Registration("alice123", "Str0ng!pass", "Alice Example", "Str0ng!pass")
	assert.True(t, errs.Ok())
}

func TestRegistration_AllFieldsInvalid(t *testing.T) {
	errs := Registration("a!", "weak", "x", "different")
	require.False(t, errs.Ok())

	assert.Equal(t, MsgUsernameInvalid, errs[FieldUsername])
	assert.Equal(t, MsgPasswordInvalid, errs[FieldPassword])
	assert.Equal(t, MsgDisplayNameInvalid, errs[FieldDisplayName])
	assert.Equal(t, MsgConfirmMismatch, errs[FieldConfirm])
}

func TestRegistration_Username(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"alice123", true},
		{"ABCdef", true},
		{"short", false},          // under six chars
		{"has space1", false},     // spaces not allowed
		{"under_score99", false},  // only letters and digits
		{"", false},
	}
	for _, tc := range cases {
		msg := CheckField(FieldUsername, tc.value)
		if tc.ok || tc.value == "" {
			assert.Empty(t, msg, "username %q", tc.value)
		} else {
			assert.Equal(t, MsgUsernameInvalid, msg, "username %q", tc.value)
		}
	}
}

func TestRegistration_DisplayName(t *testing.T) {
	assert.Empty(t, CheckField(FieldDisplayName, "Alice Example"))
	assert.Empty(t, CheckField(FieldDisplayName, "Alice9"))
	assert.Equal(t, MsgDisplayNameInvalid, CheckField(FieldDisplayName, " leading space"))
	assert.Equal(t, MsgDisplayNameInvalid, CheckField(FieldDisplayName, "trailing "))
	assert.Equal(t, MsgDisplayNameInvalid, CheckField(FieldDisplayName, "tiny"))
}

func TestRegistration_Password(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"Str0ng!pass", true},
		{"aB3!efgh", true},
		{"alllower1!", false}, // no uppercase
		{"ALLUPPER1!", false}, // no lowercase
		{"NoDigits!", false},
		{"NoSymbol123", false},
		{"aB3!efg", false}, // too short
	}
	for _, tc := range cases {
		msg := CheckField(FieldPassword, tc.value)
		if tc.ok {
			assert.Empty(t, msg, "password %q", tc.value)
		} else {
			assert.Equal(t, MsgPasswordInvalid, msg, "password %q", tc.value)
		}
	}
}

func TestCheckField_EmptyClearsError(t *testing.T) {
	assert.Empty(t, CheckField(FieldUsername, ""))
	assert.Empty(t, CheckField(FieldPassword, ""))
	assert.Empty(t, CheckField(FieldDisplayName, ""))
}

func TestErrors_ErrorString(t *testing.T) {
	errs := Errors{FieldUsername: MsgUsernameInvalid, FieldConfirm: MsgConfirmMismatch}
	assert.Equal(t, "confirm: Confirm Password does not match password; username: Username is invalid", errs.Error())
}
