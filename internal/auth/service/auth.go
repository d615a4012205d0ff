package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cartloop/shopapi/internal/auth/domain"
	"github.com/cartloop/shopapi/internal/auth/mail"
	"github.com/cartloop/shopapi/internal/auth/store"
	"github.com/cartloop/shopapi/pkg/cryptox"
	"github.com/cartloop/shopapi/pkg/idx"
	"github.com/cartloop/shopapi/pkg/slogx"

	passwordvalidator "github.com/wagslane/go-password-validator"
)

const (
	// DefaultResetTokenTTL is the reset-token validity window. Minutes,
	// not hours: the token rides in an email and is single use.
	DefaultResetTokenTTL = 15 * time.Minute

	// DefaultMinPasswordEntropy is deliberately lenient; raise it per
	// deployment via config.
	DefaultMinPasswordEntropy = 25
)

// ImageStore is the external image-hosting collaborator for avatars.
type ImageStore interface {
	Upload(ctx context.Context, name string, data []byte) (domain.Avatar, error)
	Destroy(ctx context.Context, publicID string) error
}

// AuthService owns registration, login and the password lifecycle.
type AuthService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Mailer mail.Mailer
	Images ImageStore

	ResetTokenTTL      time.Duration
	MinPasswordEntropy float64

	// PublicURL is the externally reachable base URL used to build the
	// reset link placed in email.
	PublicURL string
}

func (s *AuthService) resetTTL() time.Duration {
	if s.ResetTokenTTL > 0 {
		return s.ResetTokenTTL
	}
	return DefaultResetTokenTTL
}

func (s *AuthService) minEntropy() float64 {
	if s.MinPasswordEntropy > 0 {
		return s.MinPasswordEntropy
	}
	return DefaultMinPasswordEntropy
}

func (s *AuthService) checkStrength(password string) error {
	if err := passwordvalidator.Validate(password, s.minEntropy()); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}
	return nil
}

// Register creates a new user with the default role and an optional avatar.
// A duplicate email surfaces as the store's typed outcome.
func (s *AuthService) Register(
	ctx context.Context,
	name, email, password string,
	avatarName string, avatarData []byte,
) (domain.User, error) {
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.User{}, ErrMissingCredentials
	}
	if err := s.checkStrength(password); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	if len(avatarData) > 0 {
		avatar, err := s.Images.Upload(ctx, avatarName, avatarData)
		if err != nil {
			return domain.User{}, fmt.Errorf("upload avatar: %w", err)
		}
		user.Avatar = &avatar
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		// The record never landed; don't leave the avatar orphaned.
		if user.Avatar != nil {
			_ = s.Images.Destroy(ctx, user.Avatar.PublicID)
		}
		return domain.User{}, err
	}

	return user, nil
}

// Login verifies credentials. Unknown email and wrong password collapse into
// the single ErrInvalidCredentials so callers can't enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, ErrMissingCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, ErrInvalidCredentials
		}
		// Corrupt stored hash is an internal fault, not a bad login.
		return domain.User{}, err
	}

	return user, nil
}

// ForgotPassword generates a single-use reset token, persists only its
// fingerprint plus expiry, and emails the raw token. If delivery fails the
// persisted fields are rolled back before the fault is surfaced, so a live
// token its owner can never see is never left behind.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownEmail
		}
		return err
	}

	rawToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(s.resetTTL())
	fingerprint := cryptox.FingerprintToken(rawToken)

	if err := s.Store.Users().SetResetToken(ctx, user.ID, fingerprint, expiresAt); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/password/reset/%s", strings.TrimRight(s.PublicURL, "/"), rawToken)
	msg := mail.Message{
		To:      user.Email,
		Subject: "Shopapi Password Recovery",
		Body: fmt.Sprintf(
			"Your password reset link is:\n\n%s\n\nIt expires in %s. If you did not request this email, please ignore it.",
			resetURL, s.resetTTL(),
		),
	}

	if err := s.Mailer.Send(ctx, msg); err != nil {
		log.Warn("reset email failed, rolling back token", "user_id", user.ID, "err", err)
		if clearErr := s.Store.Users().ClearResetToken(ctx, user.ID); clearErr != nil {
			return errors.Join(err, clearErr)
		}
		return fmt.Errorf("send reset email: %w", err)
	}

	return nil
}

// ResetPassword consumes a reset token. The presented raw token is
// fingerprinted and matched against an unexpired stored fingerprint; any
// miss (wrong, expired, already consumed) is the single opaque
// ErrResetTokenInvalid. On success the reset fields are cleared so the
// token can never validate again.
func (s *AuthService) ResetPassword(
	ctx context.Context,
	rawToken, password, confirmPassword string,
) (domain.User, error) {
	fingerprint := cryptox.FingerprintToken(rawToken)

	user, err := s.Store.Users().GetUserByResetHash(ctx, fingerprint, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrResetTokenInvalid
		}
		return domain.User{}, err
	}

	if password != confirmPassword {
		return domain.User{}, ErrPasswordMismatch
	}
	if err := s.checkStrength(password); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return domain.User{}, err
	}
	if err := s.Store.Users().ClearResetToken(ctx, user.ID); err != nil {
		return domain.User{}, err
	}

	user.PasswordHash = hash
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil
	return user, nil
}

// ChangePassword replaces the password of an authenticated user after
// verifying the old one.
func (s *AuthService) ChangePassword(
	ctx context.Context,
	userID, oldPassword, newPassword, confirmPassword string,
) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.Hasher.Verify(oldPassword, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, ErrWrongOldPassword
		}
		return domain.User{}, err
	}

	if newPassword != confirmPassword {
		return domain.User{}, ErrPasswordMismatch
	}
	if err := s.checkStrength(newPassword); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return domain.User{}, err
	}

	user.PasswordHash = hash
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
