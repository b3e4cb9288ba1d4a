// ABOUTME: Lease tokens for the leasing agent API: HS256 JWTs scoped to a lead and communities
// ABOUTME: Issue mints them for a Grant, Verify checks signature, issuer and expiry with leeway

package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is the iss claim carried by every lease token.
	Issuer = "leasing-agent"

	// Leeway absorbs clock skew between the token holder and the verifier.
	Leeway = 30 * time.Second
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// Claims is what a lease token says about its holder.
type Claims struct {
	Subject     string   // lead or portal the token was issued to
	Communities []string // community IDs the holder may chat in, empty means any
	IssuedAt    time.Time
	ExpiresAt   time.Time // zero when the token carries no exp
}

// Expired reports whether the token has an expiry at or before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// AllowsCommunity reports whether the holder may start a conversation in
// the community.
func (c Claims) AllowsCommunity(id string) bool {
	return len(c.Communities) == 0 || slices.Contains(c.Communities, id)
}

// leaseClaims is the JWT body shared by Issue, Verify and Inspect.
type leaseClaims struct {
	Communities []string `json:"communities,omitempty"`
	jwt.RegisteredClaims
}

func (lc *leaseClaims) claims() Claims {
	c := Claims{
		Subject:     lc.Subject,
		Communities: slices.Clone(lc.Communities),
	}
	if lc.IssuedAt != nil {
		c.IssuedAt = lc.IssuedAt.Time
	}
	if lc.ExpiresAt != nil {
		c.ExpiresAt = lc.ExpiresAt.Time
	}
	return c
}

// Grant describes the token to issue.
type Grant struct {
	Subject     string
	Communities []string
	TTL         time.Duration
}

// TokenVerifier defines the interface for token verification
type TokenVerifier interface {
	Verify(tokenString string) (Claims, error)
}

// JWTVerifier issues and verifies HS256 lease tokens.
type JWTVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewJWTVerifier creates a new JWT verifier with the given secret
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret, now: time.Now}
}

// Verify validates the token and returns its claims. Tokens must be HS256,
// carry Issuer and a subject, and be unexpired within Leeway.
func (v *JWTVerifier) Verify(tokenString string) (Claims, error) {
	var lc leaseClaims
	_, err := jwt.ParseWithClaims(tokenString, &lc,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithLeeway(Leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if lc.Subject == "" {
		return Claims{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	return lc.claims(), nil
}

// Issue mints a token for g. A non-positive TTL yields an already expired
// token, which tests use.
func (v *JWTVerifier) Issue(g Grant) (string, error) {
	if g.Subject == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	now := v.now()
	lc := leaseClaims{
		Communities: g.Communities,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   g.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, lc).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
