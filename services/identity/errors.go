package identity

import (
	"errors"
	"fmt"
)

// Error codes reported by the provider
const (
	CodeUserNotFound    = "auth/user-not-found"
	CodeWrongPassword   = "auth/wrong-password"
	CodeInvalidEmail    = "auth/invalid-email"
	CodeUserDisabled    = "auth/user-disabled"
	CodeTooManyRequests = "auth/too-many-requests"
	CodeInvalidToken    = "auth/invalid-token"
	CodeEmailInUse      = "auth/email-already-in-use"
	CodeWeakPassword    = "auth/weak-password"
	CodeInternal        = "auth/internal"
)

// Error is a provider failure carrying a stable code
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf returns the provider code of err, or CodeInternal when err did not
// come from the provider
func CodeOf(err error) string {
	var identityErr *Error
	if errors.As(err, &identityErr) {
		return identityErr.Code
	}
	return CodeInternal
}
