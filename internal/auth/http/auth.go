package http

import (
	"net/http"

	"github.com/cartloop/shopapi/internal/auth/domain"
	"github.com/cartloop/shopapi/internal/auth/service"
	"github.com/cartloop/shopapi/pkg/httpx"
)

// AuthHandler owns registration, login and logout.
type AuthHandler struct {
	Auth         *service.AuthService
	Tokens       *service.TokenService
	CookieSecure bool
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// issueSession mints a token for the user, sets the session cookie and
// builds the standard authenticated response body.
func (h *AuthHandler) issueSession(w http.ResponseWriter, user domain.User) (AuthResponse, error) {
	token, expiresAt, err := h.Tokens.Issue(user.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	SetSessionCookie(w, token, expiresAt, h.CookieSecure)
	return AuthResponse{
		Success: true,
		Token:   token,
		User:    toUserResponse(user),
	}, nil
}

// HandleRegister godoc
//
//	@Summary		Register a new account
//	@Description	Creates a user with the default role and an optional base64 avatar, then establishes a session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Registration details"
//	@Success		201		{object}	AuthResponse	"token, user"
//	@Failure		400		{object}	ErrorResponse	"Missing or weak credentials, duplicate email"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	avatarData, err := decodeAvatar(req.Avatar)
	if err != nil {
		return err
	}

	user, err := h.Auth.Register(r.Context(), req.Name, req.Email, req.Password, "avatar", avatarData)
	if err != nil {
		return err
	}

	resp, err := h.issueSession(w, user)
	if err != nil {
		return err
	}

	httpx.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Verifies email and password and establishes a session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	AuthResponse	"token, user"
//	@Failure		400		{object}	ErrorResponse	"Missing email or password"
//	@Failure		401		{object}	ErrorResponse	"Invalid email or password"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	user, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	resp, err := h.issueSession(w, user)
	if err != nil {
		return err
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
	return nil
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Clears the session cookie. Idempotent; safe without a session.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	MessageResponse
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) error {
	ClearSessionCookie(w, h.CookieSecure)
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Logged out",
	})
	return nil
}
