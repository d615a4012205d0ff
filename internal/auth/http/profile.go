package http

import (
	"net/http"

	"github.com/cartloop/shopapi/internal/auth/service"
	"github.com/cartloop/shopapi/pkg/httpx"
)

// ProfileHandler serves the authenticated user's own record.
type ProfileHandler struct {
	Users *service.UserService
}

type updateProfileRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// HandleGet godoc
//
//	@Summary		Get own profile
//	@Tags			Me
//	@Produce		json
//	@Success		200	{object}	UserEnvelope
//	@Failure		401	{object}	ErrorResponse	"Not logged in"
//	@Router			/v1/me [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) error {
	user := UserFromContext(r.Context())
	if user == nil {
		return service.ErrNoSession
	}

	httpx.WriteJSON(w, http.StatusOK, UserEnvelope{
		Success: true,
		User:    toUserResponse(*user),
	})
	return nil
}

// HandleUpdate godoc
//
//	@Summary		Update own profile
//	@Description	Updates name and email; an optional base64 avatar replaces the current one.
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Param			request	body		updateProfileRequest	true	"Profile fields"
//	@Success		200		{object}	UserEnvelope
//	@Failure		400		{object}	ErrorResponse	"Duplicate email, invalid avatar"
//	@Failure		401		{object}	ErrorResponse	"Not logged in"
//	@Router			/v1/me [put].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) error {
	user := UserFromContext(r.Context())
	if user == nil {
		return service.ErrNoSession
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	avatarData, err := decodeAvatar(req.Avatar)
	if err != nil {
		return err
	}

	updated, err := h.Users.UpdateProfile(r.Context(), user.ID, req.Name, req.Email, "avatar", avatarData)
	if err != nil {
		return err
	}

	httpx.WriteJSON(w, http.StatusOK, UserEnvelope{
		Success: true,
		User:    toUserResponse(updated),
	})
	return nil
}
