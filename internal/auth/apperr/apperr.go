// Package apperr normalizes the heterogeneous failure causes of the auth
// core into the stable client-facing contract: one status code and one
// human-readable message per cause. Handlers and middleware never format
// error bodies themselves; everything funnels through Normalize.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cartloop/shopapi/internal/auth/service"
	"github.com/cartloop/shopapi/internal/auth/store"
	"github.com/cartloop/shopapi/pkg/jwtx"
)

// Error is the normalized failure: what the client sees.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden names the caller's role and is used by the authorization gate.
func Forbidden(role string) *Error {
	return New(http.StatusForbidden,
		fmt.Sprintf("Role: %s is not allowed to access this resource", role))
}

// Client-facing messages for session failures. Three distinct causes, three
// distinct messages; none reveals signing internals.
const (
	msgLoginRequired  = "Please login to access this resource"
	msgSessionInvalid = "Session token is invalid, please login again"
	msgSessionExpired = "Session has expired, please login again"
)

// Normalize maps any failure cause to its {status, message} pair. Unmatched
// causes fall back to a generic 500 so every pipeline execution terminates
// in a well-formed response.
func Normalize(err error) *Error {
	// Already normalized (middleware and handlers may construct directly).
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	// Typed persistence outcomes.
	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		return BadRequest(fmt.Sprintf("Duplicate %s Entered", dup.Field))
	}
	var badID *store.InvalidIDError
	if errors.As(err, &badID) {
		return BadRequest(fmt.Sprintf("Resource not found. Invalid: %s", badID.Path))
	}
	var missing *service.UserNotFoundError
	if errors.As(err, &missing) {
		return BadRequest(fmt.Sprintf("User does not exist with Id: %s", missing.ID))
	}

	switch {
	// Credential failures. Unknown email and wrong password share one
	// message so responses never confirm an account exists.
	case errors.Is(err, service.ErrMissingCredentials):
		return BadRequest("Please Enter Email and Password")
	case errors.Is(err, service.ErrInvalidCredentials):
		return Unauthorized("Invalid Email or Password")

	// Session-token failures.
	case errors.Is(err, service.ErrNoSession):
		return Unauthorized(msgLoginRequired)
	case errors.Is(err, jwtx.ErrExpired):
		return Unauthorized(msgSessionExpired)
	case errors.Is(err, jwtx.ErrMalformed),
		errors.Is(err, jwtx.ErrInvalidSig),
		errors.Is(err, jwtx.ErrIssuer):
		return Unauthorized(msgSessionInvalid)

	// Reset flow. Wrong, expired and already-consumed tokens are
	// deliberately indistinguishable.
	case errors.Is(err, service.ErrResetTokenInvalid):
		return BadRequest("Reset password token is invalid or has been expired")
	case errors.Is(err, service.ErrUnknownEmail):
		return New(http.StatusNotFound, "User not found")

	// Password changes.
	case errors.Is(err, service.ErrPasswordMismatch):
		return BadRequest("Password does not match")
	case errors.Is(err, service.ErrWrongOldPassword):
		return BadRequest("Old Password is incorrect")
	case errors.Is(err, service.ErrWeakPassword):
		return BadRequest("Password is too weak, please choose a stronger one")
	case errors.Is(err, service.ErrInvalidRole):
		return BadRequest("Role must be one of: user, admin")
	}

	return New(http.StatusInternalServerError, "Internal Server Error")
}
