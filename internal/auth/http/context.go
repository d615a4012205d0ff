package http

import (
	"context"

	"github.com/cartloop/shopapi/internal/auth/domain"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// withUser stashes the authenticated user for downstream gates and handlers.
func withUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

// UserFromContext returns the authenticated user placed by the authentication
// gate, or nil when the request never passed through it.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(ctxKeyUser).(*domain.User)
	return user
}
