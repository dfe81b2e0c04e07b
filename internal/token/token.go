// Package token issues and verifies the signed session tokens that stand in
// for server-side sessions. Tokens are stateless: validity is determined
// entirely by signature and expiry, there is no revocation list, and a
// password change does not invalidate tokens issued before it.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultValidity is how long an issued token stays valid.
const DefaultValidity = 24 * time.Hour

var (
	// ErrMalformed means the token could not be parsed at all.
	ErrMalformed = errors.New("malformed token")

	// ErrInvalidSignature means the token parsed but was not signed with
	// the issuer's secret.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrExpired means the token's validity window has passed.
	ErrExpired = errors.New("token expired")
)

// Claims carries the authenticated user's id alongside the registered
// issued-at and expiry claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Issuer signs and verifies session tokens with a server-held secret.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

// NewIssuer constructs an Issuer. The secret comes from configuration; there
// is no ambient or global secret access.
func NewIssuer(secret []byte, validity time.Duration) *Issuer {
	if validity == 0 {
		validity = DefaultValidity
	}
	return &Issuer{secret: secret, validity: validity}
}

// Issue creates a signed token for the user, valid from now until the
// issuer's validity window elapses.
func (i *Issuer) Issue(userID string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		UserID: userID,
	})

	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the embedded
// user id. Failures are one of ErrMalformed, ErrInvalidSignature, or
// ErrExpired so callers can log the cause while presenting a uniform
// rejection to clients.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		default:
			return "", fmt.Errorf("parse token: %w", err)
		}
	}
	if !tok.Valid {
		return "", ErrInvalidSignature
	}
	return claims.UserID, nil
}
