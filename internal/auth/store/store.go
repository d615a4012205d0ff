package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cartloop/shopapi/internal/auth/domain"
)

// ErrNotFound is a normal outcome for lookups, not a fault. Callers decide
// whether a missing record is an error condition.
var ErrNotFound = errors.New("store: not found")

// DuplicateError reports a uniqueness-constraint violation as a typed
// outcome so the error taxonomy stays decoupled from any storage engine's
// native error shape.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("store: duplicate %s", e.Field)
}

// InvalidIDError reports a malformed identifier before it ever reaches the
// engine. Path names the offending input (usually the URL parameter).
type InvalidIDError struct {
	Path string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("store: invalid identifier: %s", e.Path)
}

// Store is the root data access interface the auth core consumes. Concrete
// drivers (sqlite today) implement this.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and forgot-password.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// A duplicate email yields *DuplicateError.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile mutates name, email and avatar and bumps updated_at.
	// A nil avatar leaves the stored avatar untouched.
	UpdateProfile(ctx context.Context, userID, name, email string, avatar *domain.Avatar) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateRole sets the role and bumps updated_at.
	UpdateRole(ctx context.Context, userID string, role string) error

	// DeleteUser removes the record.
	DeleteUser(ctx context.Context, userID string) error

	// SetResetToken stores the reset-token fingerprint and expiry.
	// Concurrent calls race last-writer-wins.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ClearResetToken nulls both reset fields. Called after a successful
	// reset (single use) and as rollback when email delivery fails.
	ClearResetToken(ctx context.Context, userID string) error

	// GetUserByResetHash returns the user whose stored fingerprint matches
	// AND whose expiry is after now. Wrong token, expired token, and
	// already-consumed token are all the same ErrNotFound.
	GetUserByResetHash(ctx context.Context, tokenHash string, now time.Time) (domain.User, error)

	// ClearExpiredResetTokens nulls reset fields past their expiry.
	// Housekeeping; returns the number of rows touched.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)

	// ListUsers returns all users ordered by creation (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int64, error)
}
