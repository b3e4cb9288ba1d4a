// Package auth handles lease tokens for the leasing agent API.
//
// A lease token is an HS256 JWT issued by the agent to a lead or portal. It
// carries the standard sub/iat/exp claims, iss set to Issuer, and an
// optional "communities" list restricting where the holder may start a
// conversation.
//
// # Client Side
//
// The chat client holds an opaque or JWT bearer token from configuration.
// Before each request it calls Inspect, which decodes a JWT without the
// signing key so an expired token fails with ErrExpiredToken instead of a
// round trip. Non-JWT tokens report ErrInvalidToken and are sent as-is.
//
// # Server Side
//
// JWTVerifier issues tokens from a Grant and verifies them with Leeway for
// clock skew. The fake agent wraps its API in HTTPAuthMiddleware when
// started with a secret:
//
//	verifier := auth.NewJWTVerifier(secret)
//	handler = auth.HTTPAuthMiddleware(verifier)(handler)
//
// Handlers read the caller with ClaimsFromContext and check
// Claims.AllowsCommunity before starting a conversation.
package auth
