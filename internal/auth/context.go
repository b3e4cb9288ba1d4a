// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithClaims/ClaimsFromContext for propagating verified lease claims

package auth

import (
	"context"
)

// claimsKey is the key type for storing claims in context.Context.
type claimsKey struct{}

// WithClaims returns a new context carrying verified token claims.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by the bearer middleware. ok
// is false if the request was not authenticated.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(Claims)
	return claims, ok
}
