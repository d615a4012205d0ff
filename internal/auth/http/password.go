package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cartloop/shopapi/internal/auth/service"
	"github.com/cartloop/shopapi/pkg/httpx"
)

// PasswordHandler owns the forgot/reset flow and authenticated password
// changes.
type PasswordHandler struct {
	Auth         *service.AuthService
	Tokens       *service.TokenService
	CookieSecure bool
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// HandleForgot godoc
//
//	@Summary		Request a password reset
//	@Description	Emails a single-use reset link. The raw token only ever appears in the email.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		forgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	MessageResponse
//	@Failure		404		{object}	ErrorResponse	"No account with that email"
//	@Router			/v1/auth/password/forgot [post].
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) error {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	if err := h.Auth.ForgotPassword(r.Context(), req.Email); err != nil {
		return err
	}

	httpx.WriteJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Email sent to: %s", strings.ToLower(strings.TrimSpace(req.Email))),
	})
	return nil
}

// HandleReset godoc
//
//	@Summary		Reset password with a token
//	@Description	Consumes the emailed reset token, sets the new password and establishes a session. The token validates at most once.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string					true	"Raw reset token from the email"
//	@Param			request	body		resetPasswordRequest	true	"New password"
//	@Success		200		{object}	AuthResponse			"token, user"
//	@Failure		400		{object}	ErrorResponse			"Invalid or expired token, mismatch, weak password"
//	@Router			/v1/auth/password/reset/{token} [put].
func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) error {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	user, err := h.Auth.ResetPassword(r.Context(), r.PathValue("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		return err
	}

	token, expiresAt, err := h.Tokens.Issue(user.ID)
	if err != nil {
		return err
	}
	SetSessionCookie(w, token, expiresAt, h.CookieSecure)

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Token:   token,
		User:    toUserResponse(user),
	})
	return nil
}

// HandleChange godoc
//
//	@Summary		Change own password
//	@Description	Verifies the old password, sets the new one and rotates the session.
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Param			request	body		changePasswordRequest	true	"Old and new passwords"
//	@Success		200		{object}	AuthResponse			"token, user"
//	@Failure		400		{object}	ErrorResponse			"Wrong old password, mismatch, weak password"
//	@Failure		401		{object}	ErrorResponse			"Not logged in"
//	@Router			/v1/me/password [put].
func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) error {
	user := UserFromContext(r.Context())
	if user == nil {
		return service.ErrNoSession
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	updated, err := h.Auth.ChangePassword(r.Context(), user.ID, req.OldPassword, req.Password, req.ConfirmPassword)
	if err != nil {
		return err
	}

	token, expiresAt, err := h.Tokens.Issue(updated.ID)
	if err != nil {
		return err
	}
	SetSessionCookie(w, token, expiresAt, h.CookieSecure)

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Token:   token,
		User:    toUserResponse(updated),
	})
	return nil
}
