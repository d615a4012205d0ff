package service

import (
	"time"

	"github.com/cartloop/shopapi/pkg/jwtx"
)

// TokenService mints and verifies session tokens. The signing key behind
// Signer/Verifier is loaded once at startup and never mutated.
type TokenService struct {
	Signer     *jwtx.Signer
	Verifier   *jwtx.Verifier
	Issuer     string
	SessionTTL time.Duration
}

// Issue mints a signed session token for the user. The returned expiry is
// what the HTTP layer sets on the session cookie, keeping cookie lifetime
// and token validity synchronized.
func (s *TokenService) Issue(userID string) (string, time.Time, error) {
	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(userID, s.Issuer, s.SessionTTL, now)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks the token and returns the embedded user id. Failures come
// back as the jwtx sentinels so the normalizer can tell expired apart from
// tampered or malformed.
func (s *TokenService) Verify(token string) (string, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
