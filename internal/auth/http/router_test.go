package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cartloop/shopapi/internal/auth/domain"
	httpapi "github.com/cartloop/shopapi/internal/auth/http"
	"github.com/cartloop/shopapi/internal/auth/mail"
	"github.com/cartloop/shopapi/internal/auth/service"
	"github.com/cartloop/shopapi/internal/auth/store/drivers/sqlite"
	"github.com/cartloop/shopapi/pkg/cryptox"
	"github.com/cartloop/shopapi/pkg/idx"
	"github.com/cartloop/shopapi/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type capturingMailer struct {
	sent []mail.Message
}

func (m *capturingMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type nullImages struct{}

func (nullImages) Upload(_ context.Context, _ string, _ []byte) (domain.Avatar, error) {
	return domain.Avatar{PublicID: "img", URL: "http://img.test/img"}, nil
}

func (nullImages) Destroy(_ context.Context, _ string) error { return nil }

type testServer struct {
	router *httpapi.Router
	mailer *capturingMailer
	users  *service.UserService
	ipSeq  atomic.Int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	key, err := jwtx.LoadOrGenerateKey(t.TempDir() + "/signing.key")
	require.NoError(t, err)
	signer, err := jwtx.NewSigner(key)
	require.NoError(t, err)

	tokens := &service.TokenService{
		Signer:     signer,
		Verifier:   jwtx.NewVerifier(signer.Public(), "shopapi-test"),
		Issuer:     "shopapi-test",
		SessionTTL: time.Hour,
	}

	mailer := &capturingMailer{}
	images := nullImages{}

	auth := &service.AuthService{
		Store:     st,
		Hasher:    cryptox.NewHasher("test-pepper"),
		Mailer:    mailer,
		Images:    images,
		PublicURL: "http://shop.test",
	}
	users := &service.UserService{Store: st, Images: images}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := httpapi.NewRouter(signer, "test", st, logger, false)
	router.TokenService = tokens
	router.AuthService = auth
	router.UserService = users
	router.ApplyRoutes()

	return &testServer{router: router, mailer: mailer, users: users}
}

// do sends a request through the full middleware stack. Each call gets its
// own client IP so per-IP rate limits never interfere across test steps.
func (s *testServer) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, rdr)
	req.RemoteAddr = fmt.Sprintf("10.9.%d.%d:4000",
		s.ipSeq.Add(1)/250, s.ipSeq.Load()%250)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == httpapi.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *testServer) register(t *testing.T, name, email, password string) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	rec := s.do(http.MethodPost, "/v1/auth/register",
		fmt.Sprintf(`{"name":%q,"email":%q,"password":%q}`, name, email, password))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return rec, sessionCookie(t, rec)
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	rec, cookie := srv.register(t, "Alice", "alice@example.com", "secret1")

	t.Run("register response", func(t *testing.T) {
		body := decodeBody(t, rec)
		require.Equal(t, true, body["success"])
		require.NotEmpty(t, body["token"])

		user := body["user"].(map[string]any)
		require.Equal(t, "alice@example.com", user["email"])
		require.Equal(t, "user", user["role"])
		require.NotContains(t, rec.Body.String(), "password", "hash never leaves the service")
		require.True(t, cookie.HttpOnly)
	})

	t.Run("cookie expiry matches the token expiry", func(t *testing.T) {
		token := decodeBody(t, rec)["token"].(string)

		claims := jwt.MapClaims{}
		_, _, err := jwt.NewParser().ParseUnverified(token, claims)
		require.NoError(t, err)
		exp, err := claims.GetExpirationTime()
		require.NoError(t, err)

		require.WithinDuration(t, exp.Time, cookie.Expires, time.Second)
	})

	t.Run("login with the same credentials", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/v1/auth/login",
			`{"email":"alice@example.com","password":"secret1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		sessionCookie(t, rec)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/v1/auth/login",
			`{"email":"alice@example.com","password":"wrong"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, false, body["success"])
		require.Equal(t, "Invalid Email or Password", body["message"])
	})

	t.Run("unknown email reads identically", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/v1/auth/login",
			`{"email":"ghost@example.com","password":"secret1"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid Email or Password", decodeBody(t, rec)["message"])
	})

	t.Run("missing credentials", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/v1/auth/login", `{"email":"alice@example.com"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Please Enter Email and Password", decodeBody(t, rec)["message"])
	})

	t.Run("duplicate registration", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/v1/auth/register",
			`{"name":"Imposter","email":"alice@example.com","password":"secret2"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Duplicate email Entered", decodeBody(t, rec)["message"])
	})
}

func TestAuthenticationGate(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := srv.register(t, "Alice", "alice@example.com", "secret1")

	t.Run("no cookie", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/v1/me", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Please login to access this resource", decodeBody(t, rec)["message"])
	})

	t.Run("valid session", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/v1/me", "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		user := body["user"].(map[string]any)
		require.Equal(t, "alice@example.com", user["email"])
	})

	t.Run("tampered token", func(t *testing.T) {
		bad := *cookie
		bad.Value = cookie.Value[:len(cookie.Value)-2] + "xx"
		rec := srv.do(http.MethodGet, "/v1/me", "", &bad)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Session token is invalid, please login again", decodeBody(t, rec)["message"])
	})

	t.Run("garbage token", func(t *testing.T) {
		bad := *cookie
		bad.Value = "garbage"
		rec := srv.do(http.MethodGet, "/v1/me", "", &bad)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Session token is invalid, please login again", decodeBody(t, rec)["message"])
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/v1/auth/logout", "")
		require.Equal(t, http.StatusOK, rec.Code)

		for _, c := range rec.Result().Cookies() {
			if c.Name == httpapi.SessionCookieName {
				require.Empty(t, c.Value)
				require.True(t, c.Expires.Before(time.Now()))
				return
			}
		}
		t.Fatal("no expired session cookie in logout response")
	})
}

func TestAuthorizationGate(t *testing.T) {
	srv := newTestServer(t)
	regRec, userCookie := srv.register(t, "Alice", "alice@example.com", "secret1")

	userID := decodeBody(t, regRec)["user"].(map[string]any)["id"].(string)

	t.Run("plain user is forbidden", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/v1/admin/users", "", userCookie)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "Role: user is not allowed to access this resource",
			decodeBody(t, rec)["message"])
	})

	t.Run("anonymous caller is unauthorized, not forbidden", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/v1/admin/users", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	// Promote out of band and retry with the same session.
	require.NoError(t, srv.users.UpdateRole(context.Background(), userID, domain.RoleAdmin))

	t.Run("admin passes the gate", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/v1/admin/users", "", userCookie)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, true, body["success"])
		require.EqualValues(t, 1, body["count"])
	})

	t.Run("malformed id in admin routes", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/v1/admin/users/not-a-ulid", "", userCookie)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Resource not found. Invalid: id", decodeBody(t, rec)["message"])
	})

	t.Run("missing user id", func(t *testing.T) {
		ghost := idx.New().String()
		rec := srv.do(http.MethodGet, "/v1/admin/users/"+ghost, "", userCookie)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "User does not exist with Id: "+ghost, decodeBody(t, rec)["message"])
	})

	t.Run("role change round trip", func(t *testing.T) {
		other, _ := srv.register(t, "Bob", "bob@example.com", "secret1")
		otherID := decodeBody(t, other)["user"].(map[string]any)["id"].(string)

		rec := srv.do(http.MethodPut, "/v1/admin/users/"+otherID+"/role",
			`{"role":"admin"}`, userCookie)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "admin",
			decodeBody(t, rec)["user"].(map[string]any)["role"])

		bad := srv.do(http.MethodPut, "/v1/admin/users/"+otherID+"/role",
			`{"role":"superuser"}`, userCookie)
		require.Equal(t, http.StatusBadRequest, bad.Code)
	})

	t.Run("delete user", func(t *testing.T) {
		victim, _ := srv.register(t, "Carol", "carol@example.com", "secret1")
		victimID := decodeBody(t, victim)["user"].(map[string]any)["id"].(string)

		rec := srv.do(http.MethodDelete, "/v1/admin/users/"+victimID, "", userCookie)
		require.Equal(t, http.StatusOK, rec.Code)

		gone := srv.do(http.MethodGet, "/v1/admin/users/"+victimID, "", userCookie)
		require.Equal(t, http.StatusBadRequest, gone.Code)
	})
}

func TestPasswordRecoveryFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "Alice", "alice@example.com", "secret1")

	t.Run("forgot password sends the email", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/v1/auth/password/forgot",
			`{"email":"alice@example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Email sent to: alice@example.com", decodeBody(t, rec)["message"])
		require.Len(t, srv.mailer.sent, 1)
	})

	t.Run("unknown email is a 404", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/v1/auth/password/forgot",
			`{"email":"ghost@example.com"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "User not found", decodeBody(t, rec)["message"])
	})

	var raw string
	t.Run("reset with the emailed token", func(t *testing.T) {
		body := srv.mailer.sent[0].Body
		i := strings.Index(body, "/password/reset/")
		require.GreaterOrEqual(t, i, 0)
		raw = strings.Fields(body[i+len("/password/reset/"):])[0]

		rec := srv.do(http.MethodPut, "/v1/auth/password/reset/"+raw,
			`{"password":"newsecret1","confirm_password":"newsecret1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		sessionCookie(t, rec)

		login := srv.do(http.MethodPost, "/v1/auth/login",
			`{"email":"alice@example.com","password":"newsecret1"}`)
		require.Equal(t, http.StatusOK, login.Code)
	})

	t.Run("token replay is rejected", func(t *testing.T) {
		rec := srv.do(http.MethodPut, "/v1/auth/password/reset/"+raw,
			`{"password":"again1","confirm_password":"again1"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Reset password token is invalid or has been expired",
			decodeBody(t, rec)["message"])
	})
}

func TestChangeOwnPassword(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := srv.register(t, "Alice", "alice@example.com", "secret1")

	t.Run("wrong old password", func(t *testing.T) {
		rec := srv.do(http.MethodPut, "/v1/me/password",
			`{"old_password":"wrong","password":"newsecret1","confirm_password":"newsecret1"}`, cookie)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Old Password is incorrect", decodeBody(t, rec)["message"])
	})

	t.Run("success rotates the session", func(t *testing.T) {
		rec := srv.do(http.MethodPut, "/v1/me/password",
			`{"old_password":"secret1","password":"newsecret1","confirm_password":"newsecret1"}`, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		fresh := sessionCookie(t, rec)

		me := srv.do(http.MethodGet, "/v1/me", "", fresh)
		require.Equal(t, http.StatusOK, me.Code)
	})
}

func TestUpdateOwnProfile(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := srv.register(t, "Alice", "alice@example.com", "secret1")

	rec := srv.do(http.MethodPut, "/v1/me",
		`{"name":"Alicia","email":"alicia@example.com"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	user := decodeBody(t, rec)["user"].(map[string]any)
	require.Equal(t, "Alicia", user["name"])
	require.Equal(t, "alicia@example.com", user["email"])

	t.Run("omitting email leaves it unchanged", func(t *testing.T) {
		rec := srv.do(http.MethodPut, "/v1/me", `{"name":"Ali"}`, cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		user := decodeBody(t, rec)["user"].(map[string]any)
		require.Equal(t, "Ali", user["name"])
		require.Equal(t, "alicia@example.com", user["email"])

		login := srv.do(http.MethodPost, "/v1/auth/login",
			`{"email":"alicia@example.com","password":"secret1"}`)
		require.Equal(t, http.StatusOK, login.Code)
	})
}

func TestLoginRateLimit(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "Alice", "alice@example.com", "secret1")

	// Fixed client IP; attempts are keyed by IP plus submitted email.
	attempt := func(email string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
			strings.NewReader(fmt.Sprintf(`{"email":%q,"password":"wrong"}`, email)))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.200.0.1:4000"
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		return rec
	}

	for range 5 {
		require.Equal(t, http.StatusUnauthorized, attempt("alice@example.com").Code)
	}

	t.Run("sixth attempt against the account is throttled", func(t *testing.T) {
		rec := attempt("alice@example.com")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("other accounts from the same IP still get through", func(t *testing.T) {
		rec := attempt("bob@example.com")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("livez", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/livez", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", decodeBody(t, rec)["status"])
	})

	t.Run("readyz", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, "ok", body["status"])
		checks := body["checks"].(map[string]any)
		require.Equal(t, "ok", checks["database"])
		require.Equal(t, "ok", checks["signer"])
	})
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/v1/auth/login", `{"email": nope}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid request body", decodeBody(t, rec)["message"])
}
