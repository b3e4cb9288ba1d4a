// ABOUTME: Client-side inspection of bearer tokens without the signing key
// ABOUTME: Lets callers fail fast on an expired lease token before dialing the agent

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Inspect decodes a JWT without verifying its signature. It returns
// ErrInvalidToken when tokenString is not a JWT and ErrExpiredToken when it
// is one whose exp has passed. Callers holding opaque tokens should treat
// ErrInvalidToken as "nothing to check".
func Inspect(tokenString string) (Claims, error) {
	return inspectAt(tokenString, time.Now())
}

// inspectAt applies no leeway: the client gives up on a token the verifier
// might still accept for a few seconds rather than send one it will refuse.
func inspectAt(tokenString string, now time.Time) (Claims, error) {
	var lc leaseClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &lc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	out := lc.claims()
	if out.Expired(now) {
		return out, ErrExpiredToken
	}
	return out, nil
}
