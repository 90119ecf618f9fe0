package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims are the fields of the session token the feed reads. The token is
// issued and verified by the backend, the client only inspects it.
type Claims struct {
	jwt.RegisteredClaims
	Handle string `json:"handle,omitempty"`
}

// Inspect parses token without verifying its signature.
func Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

// Expired reports whether the token is past its expiry at now. A token
// without expiry never expires.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}

	return !now.Before(c.ExpiresAt.Time)
}

// Sign issues an HS256 token. It is used by local tooling and tests that
// stand in for the backend.
func Sign(secret string, sub, handle string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Handle: handle,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   sub,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
