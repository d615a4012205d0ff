package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cartloop/shopapi/internal/auth/domain"
	"github.com/cartloop/shopapi/internal/auth/service"
	"github.com/cartloop/shopapi/internal/auth/store"
	"github.com/cartloop/shopapi/pkg/httpx"
	"github.com/cartloop/shopapi/pkg/jwtx"
	"github.com/cartloop/shopapi/pkg/slogx"

	_ "github.com/cartloop/shopapi/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       *jwtx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	cookieSecure bool

	store        store.Store
	TokenService *service.TokenService
	AuthService  *service.AuthService
	UserService  *service.UserService
}

func NewRouter(
	signer *jwtx.Signer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	cookieSecure bool,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		cookieSecure: cookieSecure,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPassword()
	r.registerProfile()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Shopapi Authentication Service API
//	@version		0.1.0
//	@description	Cookie-session authentication for the shop backend: registration, login,
//	@description	password recovery and the admin user directory. Session tokens are JWTs
//	@description	signed with Ed25519 and ride in an HttpOnly cookie.
//
//	@contact.name	Cartloop Team
//	@contact.url	https://github.com/cartloop/shopapi
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Auth:         r.AuthService,
		Tokens:       r.TokenService,
		CookieSecure: r.cookieSecure,
	}

	// POST /register - strict rate limit by IP (account creation)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(handle(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP and submitted email, so a guessing
	// run against one account can't be spread across the whole IP budget
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(handle(h.HandleLogin),
			httpx.RateLimit(httpx.StrictLimit, httpx.CompositeKeyExtractor(":",
				httpx.IPKeyExtractor,
				httpx.JSONFieldKeyExtractor("email"),
			)),
		),
	)

	// POST /logout - lenient, no session required
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(handle(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerPassword() {
	h := &PasswordHandler{
		Auth:         r.AuthService,
		Tokens:       r.TokenService,
		CookieSecure: r.cookieSecure,
	}

	// POST /password/forgot - strict rate limit by IP (sends email)
	r.Mux.Handle("POST /v1/auth/password/forgot",
		httpx.Chain(handle(h.HandleForgot),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// PUT /password/reset/{token} - strict rate limit by IP (token guessing)
	r.Mux.Handle("PUT /v1/auth/password/reset/{token}",
		httpx.Chain(handle(h.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// PUT /me/password - strict rate limit (old-password attempts)
	r.Mux.Handle("PUT /v1/me/password",
		httpx.Chain(handle(h.HandleChange),
			Authn(r.TokenService, r.UserService),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{Users: r.UserService}

	authn := Authn(r.TokenService, r.UserService)

	r.Mux.Handle("GET /v1/me",
		httpx.Chain(handle(h.HandleGet),
			authn,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/me",
		httpx.Chain(handle(h.HandleUpdate),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminUsersHandler{Users: r.UserService}

	// Authn first, then the role gate; the handler only runs for admins.
	secure := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			Authn(r.TokenService, r.UserService),
			RequireRoles(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/admin/users", secure(handle(h.HandleList)))
	r.Mux.Handle("GET /v1/admin/users/{id}", secure(handle(h.HandleGet)))
	r.Mux.Handle("PUT /v1/admin/users/{id}/role", secure(handle(h.HandleUpdateRole)))
	r.Mux.Handle("DELETE /v1/admin/users/{id}", secure(handle(h.HandleDelete)))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
