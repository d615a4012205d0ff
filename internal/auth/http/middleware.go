package http

import (
	"errors"
	"net/http"
	"slices"

	"github.com/cartloop/shopapi/internal/auth/apperr"
	"github.com/cartloop/shopapi/internal/auth/service"
	"github.com/cartloop/shopapi/internal/auth/store"
	"github.com/cartloop/shopapi/pkg/httpx"
)

// Authn is the authentication gate. It reads the session cookie, verifies
// the token, resolves the account and stashes it in the request context.
// Absent cookie, bad token and vanished account each stop the pipeline with
// their own cause; the wrapped handler only ever runs for a live session.
func Authn(tokens *service.TokenService, users *service.UserService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteError(w, r, service.ErrNoSession)
				return
			}

			userID, err := tokens.Verify(cookie.Value)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			user, err := users.GetTrustedUserByID(r.Context(), userID)
			if err != nil {
				// A token for a deleted account is just not a session.
				if errors.Is(err, store.ErrNotFound) {
					WriteError(w, r, service.ErrNoSession)
					return
				}
				WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), &user)))
		})
	}
}

// RequireRoles is the authorization gate: the authenticated user's role must
// be in the allow set or the pipeline stops with a forbidden naming the
// caller's role. Must sit inside Authn.
func RequireRoles(roles ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				WriteError(w, r, service.ErrNoSession)
				return
			}

			if !slices.Contains(roles, user.Role) {
				WriteError(w, r, apperr.Forbidden(user.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
