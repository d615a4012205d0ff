package domain

import "time"

// Roles are a closed set. Authorization gates compare against these values,
// so anything else in storage is a data error.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}

// Avatar references an image held by the external image-hosting
// collaborator: an opaque storage id plus the serving URL.
type Avatar struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// User is the identity record. PasswordHash and the reset-token fields hold
// only one-way-hashed material, never plaintext, and are never serialized to
// clients.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // argon2 encoded
	Role         string
	Avatar       *Avatar

	// Reset-token state: set on forgot-password, cleared on successful
	// reset or on email-send failure. Both nil means no pending reset.
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
