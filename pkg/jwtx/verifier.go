package jwtx

import (
	"crypto/ed25519"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure causes. Downstream error normalization maps each of
// these to a distinct client-facing message, so keep them separate even
// though they all mean "no session".
var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
)

// Verifier validates session tokens against the configured public key and
// issuer. Safe for concurrent use.
type Verifier struct {
	pub    ed25519.PublicKey
	issuer string
	parser *jwt.Parser
}

func NewVerifier(pub ed25519.PublicKey, issuer string) *Verifier {
	return &Verifier{
		pub:    pub,
		issuer: issuer,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()})),
	}
}

// Verify checks signature authenticity and time bounds and returns the
// parsed claims. The returned error wraps exactly one of the sentinel
// causes above.
func (v *Verifier) Verify(tokenStr string) (Claims, error) {
	token, err := v.parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.pub, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidSig
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return Claims{}, ErrIssuer
	}

	return *claims, nil
}

// mapParseError flattens golang-jwt's wrapped errors onto our sentinels.
// Expiry is checked before signature validity by the parser, so an expired
// but correctly-signed token reports ErrExpired.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return ErrInvalidSig
	}
}
