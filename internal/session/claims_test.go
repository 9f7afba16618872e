package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := signedToken(t, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(exp),
	})

	c, err := DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Subject)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.True(t, c.IssuedAt.IsZero())
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.Expired(exp.Add(time.Second)))
}

func TestDecodeClaims_NoExpiry(t *testing.T) {
	c, err := DecodeClaims(signedToken(t, jwt.RegisteredClaims{Subject: "bob"}))
	require.NoError(t, err)
	assert.False(t, c.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestDecodeClaims_Opaque(t *testing.T) {
	_, err := DecodeClaims("not-a-jwt")
	assert.Error(t, err)
}
