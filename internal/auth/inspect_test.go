// ABOUTME: Tests for unverified client-side token inspection
// ABOUTME: Covers claim extraction, expired tokens, the no-leeway boundary and opaque tokens

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_ReadsClaimsWithoutKey(t *testing.T) {
	token, err := NewJWTVerifier([]byte("server-only-secret")).Issue(Grant{
		Subject:     "lead-42",
		Communities: []string{"maple-court"},
		TTL:         time.Hour,
	})
	require.NoError(t, err)

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "lead-42", claims.Subject)
	assert.Equal(t, []string{"maple-court"}, claims.Communities)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestInspect_Expired(t *testing.T) {
	token, err := NewJWTVerifier(testSecret).Issue(Grant{Subject: "lead-42", TTL: -time.Minute})
	require.NoError(t, err)

	claims, err := Inspect(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Equal(t, "lead-42", claims.Subject)
}

func TestInspect_NoExpiry(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "lead-7"}).SignedString(testSecret)
	require.NoError(t, err)

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.IsZero())
	assert.False(t, claims.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestInspect_OpaqueToken(t *testing.T) {
	_, err := Inspect("sk_live_opaque")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestInspectAt_Boundary(t *testing.T) {
	exp := time.Unix(1_800_000_000, 0)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "lead-1",
		"exp": exp.Unix(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	_, err = inspectAt(token, exp.Add(-time.Second))
	assert.NoError(t, err)

	_, err = inspectAt(token, exp)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
