package http

import (
	"time"

	"github.com/cartloop/shopapi/internal/auth/domain"
)

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MessageResponse is the envelope for operations with no resource payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserResponse is the client-facing projection of a user. The password hash
// and reset-token fields never leave the service.
type UserResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      string         `json:"role"`
	Avatar    *domain.Avatar `json:"avatar,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuthResponse accompanies every operation that establishes a session.
type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// UsersEnvelope wraps a user listing.
type UsersEnvelope struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Users   []UserResponse `json:"users"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

func toUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
