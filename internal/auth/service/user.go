package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cartloop/shopapi/internal/auth/domain"
	"github.com/cartloop/shopapi/internal/auth/store"
	"github.com/cartloop/shopapi/pkg/idx"
)

// UserService owns profile reads/writes and the admin user operations.
type UserService struct {
	Store  store.Store
	Images ImageStore
}

// GetUserByID fetches a user by a client-supplied id. Malformed ids are
// rejected before touching storage; a well-formed miss is the typed
// not-found outcome.
func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	parsed, err := idx.Parse(id)
	if err != nil {
		return domain.User{}, &store.InvalidIDError{Path: "id"}
	}

	user, err := s.Store.Users().GetUserByID(ctx, parsed.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, &UserNotFoundError{ID: parsed.String()}
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetTrustedUserByID is the authentication-gate lookup: the id comes from a
// verified token, so a miss means the account no longer exists and the
// caller treats it as unauthenticated.
func (s *UserService) GetTrustedUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// UpdateProfile mutates the caller's own name/email and optionally replaces
// the avatar. An empty name or email leaves the stored value untouched, so a
// partial update can never blank a required field. Replacing the avatar
// destroys the previous image first, mirroring what a hosted image service
// would bill for otherwise.
func (s *UserService) UpdateProfile(
	ctx context.Context,
	userID, name, email string,
	avatarName string, avatarData []byte,
) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if name == "" {
		name = user.Name
	}
	if email == "" {
		email = user.Email
	} else {
		email = normalizeEmail(email)
	}

	var avatar *domain.Avatar
	if len(avatarData) > 0 {
		if user.Avatar != nil {
			if err := s.Images.Destroy(ctx, user.Avatar.PublicID); err != nil {
				return domain.User{}, fmt.Errorf("destroy old avatar: %w", err)
			}
		}
		uploaded, err := s.Images.Upload(ctx, avatarName, avatarData)
		if err != nil {
			return domain.User{}, fmt.Errorf("upload avatar: %w", err)
		}
		avatar = &uploaded
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, name, email, avatar); err != nil {
		return domain.User{}, err
	}

	return s.Store.Users().GetUserByID(ctx, userID)
}

// ListUsers returns every user. Admin only; the role gate enforces that
// before this runs.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// UpdateRole changes a user's role to one of the known values.
func (s *UserService) UpdateRole(ctx context.Context, id, role string) error {
	if !domain.ValidRole(role) {
		return ErrInvalidRole
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	return s.Store.Users().UpdateRole(ctx, user.ID, role)
}

// DeleteUser removes the record and destroys its avatar with the image
// collaborator.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Avatar != nil {
		if err := s.Images.Destroy(ctx, user.Avatar.PublicID); err != nil {
			return fmt.Errorf("destroy avatar: %w", err)
		}
	}

	return s.Store.Users().DeleteUser(ctx, user.ID)
}
