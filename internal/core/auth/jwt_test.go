package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "sweet-shop", TTL: time.Hour}
}

func TestIssueAndParse(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue("user-1")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.ID)
	assert.Equal(t, "user-1", c.Subject)
	assert.Equal(t, "sweet-shop", c.Issuer)
}

func TestParseRejects(t *testing.T) {
	j := newJWTer()
	good, err := j.Issue("user-1")
	require.NoError(t, err)

	expired, err := (&JWTer{Secret: j.Secret, Issuer: j.Issuer, TTL: -time.Hour}).Issue("user-1")
	require.NoError(t, err)

	otherSecret, err := (&JWTer{Secret: []byte("other"), Issuer: j.Issuer, TTL: time.Hour}).Issue("user-1")
	require.NoError(t, err)

	otherIssuer, err := (&JWTer{Secret: j.Secret, Issuer: "someone-else", TTL: time.Hour}).Issue("user-1")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: "user-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":      "invalidtoken",
		"expired":      expired,
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
		"alg none":     none,
		"truncated":    good[:len(good)-4],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := j.Parse(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
