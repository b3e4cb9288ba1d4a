// ABOUTME: Tests for the HTTP bearer middleware
// ABOUTME: Verifies rejection of bad headers and claims propagation for good tokens

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAuthMiddleware(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)

	valid, err := verifier.Issue(Grant{Subject: "lead-9", Communities: []string{"maple-court"}, TTL: time.Hour})
	require.NoError(t, err)
	expired, err := verifier.Issue(Grant{Subject: "lead-9", TTL: -time.Hour})
	require.NoError(t, err)

	var gotSubject string
	var gotCommunities []string
	handler := HTTPAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		gotSubject = claims.Subject
		gotCommunities = claims.Communities
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized, wantBody: "missing authorization header"},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized, wantBody: "invalid authorization header format"},
		{name: "empty token", header: "Bearer ", wantCode: http.StatusUnauthorized, wantBody: "empty token"},
		{name: "garbage", header: "Bearer nope", wantCode: http.StatusUnauthorized, wantBody: "invalid token"},
		{name: "expired", header: "Bearer " + expired, wantCode: http.StatusUnauthorized, wantBody: "token expired"},
		{name: "valid", header: "Bearer " + valid, wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSubject = ""
			gotCommunities = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/communities", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
				assert.Empty(t, gotSubject)
				return
			}
			assert.Equal(t, "lead-9", gotSubject)
			assert.Equal(t, []string{"maple-court"}, gotCommunities)
		})
	}
}

func TestClaimsFromContext_Unset(t *testing.T) {
	_, ok := ClaimsFromContext(t.Context())
	assert.False(t, ok)
}
