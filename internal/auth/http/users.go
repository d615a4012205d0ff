package http

import (
	"net/http"

	"github.com/cartloop/shopapi/internal/auth/service"
	"github.com/cartloop/shopapi/pkg/httpx"
)

// AdminUsersHandler exposes the user directory to administrators. The role
// gate runs before any of these.
type AdminUsersHandler struct {
	Users *service.UserService
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// HandleList godoc
//
//	@Summary		List users
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	UsersEnvelope
//	@Failure		401	{object}	ErrorResponse	"Not logged in"
//	@Failure		403	{object}	ErrorResponse	"Caller is not an admin"
//	@Router			/v1/admin/users [get].
func (h *AdminUsersHandler) HandleList(w http.ResponseWriter, r *http.Request) error {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		return err
	}

	httpx.WriteJSON(w, http.StatusOK, UsersEnvelope{
		Success: true,
		Count:   len(users),
		Users:   toUserResponses(users),
	})
	return nil
}

// HandleGet godoc
//
//	@Summary		Fetch one user
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string	true	"User id"
//	@Success		200	{object}	UserEnvelope
//	@Failure		400	{object}	ErrorResponse	"Malformed id or no such user"
//	@Router			/v1/admin/users/{id} [get].
func (h *AdminUsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) error {
	user, err := h.Users.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}

	httpx.WriteJSON(w, http.StatusOK, UserEnvelope{
		Success: true,
		User:    toUserResponse(user),
	})
	return nil
}

// HandleUpdateRole godoc
//
//	@Summary		Change a user's role
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"User id"
//	@Param			request	body		updateRoleRequest	true	"New role"
//	@Success		200		{object}	UserEnvelope
//	@Failure		400		{object}	ErrorResponse	"Unknown role or no such user"
//	@Router			/v1/admin/users/{id}/role [put].
func (h *AdminUsersHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) error {
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	id := r.PathValue("id")
	if err := h.Users.UpdateRole(r.Context(), id, req.Role); err != nil {
		return err
	}

	user, err := h.Users.GetUserByID(r.Context(), id)
	if err != nil {
		return err
	}

	httpx.WriteJSON(w, http.StatusOK, UserEnvelope{
		Success: true,
		User:    toUserResponse(user),
	})
	return nil
}

// HandleDelete godoc
//
//	@Summary		Delete a user
//	@Description	Removes the record and destroys its hosted avatar.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string	true	"User id"
//	@Success		200	{object}	MessageResponse
//	@Failure		400	{object}	ErrorResponse	"Malformed id or no such user"
//	@Router			/v1/admin/users/{id} [delete].
func (h *AdminUsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) error {
	if err := h.Users.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		return err
	}

	httpx.WriteJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: "User deleted successfully",
	})
	return nil
}
