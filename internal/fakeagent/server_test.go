// ABOUTME: Tests for the fake agent HTTP endpoints through the real client
// ABOUTME: Covers listing, start validation, unknown conversations and bearer auth

package fakeagent

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/leasing-chat/internal/auth"
	"github.com/2389/leasing-chat/internal/client"
	"github.com/2389/leasing-chat/internal/config"
	"github.com/2389/leasing-chat/internal/stream"
)

func newTestClient(t *testing.T, srv *Server, token string) *client.Client {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return client.New(config.AgentConfig{
		BaseURL:        ts.URL,
		Token:          token,
		RequestTimeout: 5 * time.Second,
	}, nil)
}

func startRequest(communityID string) client.StartRequest {
	return client.StartRequest{
		Lead:        client.Lead{Name: "Ada", Email: "ada@example.com"},
		Preferences: client.Preferences{Bedrooms: 2, MoveIn: "2026-11-15"},
		CommunityID: communityID,
	}
}

func TestServer_ListCommunities(t *testing.T) {
	c := newTestClient(t, New(nil), "")

	got, err := c.ListCommunities(t.Context())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "maple-court", got[0].ID)
	require.NotNil(t, got[0].Phone)
	assert.Nil(t, got[1].Phone)
}

func TestServer_StartAndReply(t *testing.T) {
	c := newTestClient(t, New(nil), "")

	resp, err := c.StartChat(t.Context(), startRequest("maple-court"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.LeadID)
	assert.NotEmpty(t, resp.ConversationID)
	assert.Contains(t, resp.Message, "Maple Court")

	body, err := c.Reply(t.Context(), client.ReplyRequest{
		LeadID:         resp.LeadID,
		ConversationID: resp.ConversationID,
		Message:        "hello",
	})
	require.NoError(t, err)
	defer body.Close()

	var events []stream.Event
	for ev, err := range stream.Events(t.Context(), body) {
		require.NoError(t, err)
		events = append(events, ev)
	}
	assert.Equal(t, ScriptFor("hello").Events(), events)
}

func TestServer_StartUnknownCommunity(t *testing.T) {
	c := newTestClient(t, New(nil), "")

	_, err := c.StartChat(t.Context(), startRequest("nowhere"))
	require.Error(t, err)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "nowhere")
}

func TestServer_ReplyUnknownConversation(t *testing.T) {
	c := newTestClient(t, New(nil), "")

	_, err := c.Reply(t.Context(), client.ReplyRequest{
		LeadID:         "lead",
		ConversationID: "missing",
		Message:        "hi",
	})

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "conversation not found", apiErr.Message)
}

func TestServer_RejectsInvalidJSON(t *testing.T) {
	ts := httptest.NewServer(New(nil).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/chat/start", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"invalid JSON body"}`, string(body))
}

func TestServer_RequiresToken(t *testing.T) {
	verifier := auth.NewJWTVerifier([]byte("test-secret-at-least-32-bytes-long!!"))
	srv := New(nil, WithVerifier(verifier))

	t.Run("missing", func(t *testing.T) {
		c := newTestClient(t, srv, "")
		_, err := c.ListCommunities(t.Context())

		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("valid", func(t *testing.T) {
		token, err := verifier.Issue(auth.Grant{Subject: "lead-portal", TTL: time.Hour})
		require.NoError(t, err)

		c := newTestClient(t, srv, token)
		got, err := c.ListCommunities(t.Context())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestServer_StartChecksCommunityScope(t *testing.T) {
	verifier := auth.NewJWTVerifier([]byte("test-secret-at-least-32-bytes-long!!"))
	srv := New(nil, WithVerifier(verifier))

	token, err := verifier.Issue(auth.Grant{
		Subject:     "lead-portal",
		Communities: []string{"harbor-view"},
		TTL:         time.Hour,
	})
	require.NoError(t, err)
	c := newTestClient(t, srv, token)

	resp, err := c.StartChat(t.Context(), startRequest("harbor-view"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ConversationID)

	_, err = c.StartChat(t.Context(), startRequest("maple-court"))
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, `token not valid for community "maple-court"`, apiErr.Message)
}
