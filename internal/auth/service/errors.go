package service

import (
	"errors"
	"fmt"
)

// Sentinel failure causes surfaced to the error normalizer. Services return
// these (possibly wrapped) instead of formatting client-facing messages.
var (
	ErrMissingCredentials = errors.New("service: missing email or password")
	ErrInvalidCredentials = errors.New("service: invalid email or password")
	ErrNoSession          = errors.New("service: no session token")
	ErrResetTokenInvalid  = errors.New("service: reset token invalid or expired")
	ErrUnknownEmail       = errors.New("service: no user with that email")
	ErrPasswordMismatch   = errors.New("service: password confirmation does not match")
	ErrWrongOldPassword   = errors.New("service: old password is incorrect")
	ErrWeakPassword       = errors.New("service: password too weak")
	ErrInvalidRole        = errors.New("service: invalid role")
)

// UserNotFoundError reports a well-formed id with no matching record.
type UserNotFoundError struct {
	ID string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("service: no user with id %s", e.ID)
}
