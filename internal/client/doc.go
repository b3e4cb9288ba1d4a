// Package client is the HTTP collaborator for the leasing agent.
//
// # Endpoints
//
//	GET  /api/v1/chat/communities  -> []Community
//	POST /api/v1/chat/start        StartRequest -> StartResponse
//	POST /api/v1/chat/reply        ReplyRequest -> text/event-stream body
//
// Listing and start are bounded by agent.request_timeout. Reply returns the
// open body; decoding it is the job of package stream and its lifetime is
// governed only by the caller's context.
//
// # Errors
//
// Non-200 responses become *APIError, carrying the JSON "error" (or
// "detail") field when the body has one. A configured JWT token whose exp
// has passed fails with auth.ErrExpiredToken before any request is sent.
package client
