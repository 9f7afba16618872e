package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the informational view of a stored token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token claims an expiry before now.
// A token without an exp claim never reports expired.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// DecodeClaims reads the JWT payload without verifying the signature.
// The result is for display only and must never gate a request.
func DecodeClaims(token string) (*Claims, error) {
	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &registered); err != nil {
		return nil, fmt.Errorf("token is not a readable JWT: %w", err)
	}

	c := &Claims{Subject: registered.Subject}
	if registered.IssuedAt != nil {
		c.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		c.ExpiresAt = registered.ExpiresAt.Time
	}
	return c, nil
}
