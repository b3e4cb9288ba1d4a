// ABOUTME: Scripted stand-in for the leasing agent's HTTP chat API
// ABOUTME: Serves communities, start and SSE reply streams chosen by message keywords

package fakeagent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/leasing-chat/internal/auth"
	"github.com/2389/leasing-chat/internal/client"
)

// Option configures a Server.
type Option func(*Server)

// WithDelay pauses between streamed frames.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// WithCommunities replaces the default community list.
func WithCommunities(c []client.Community) Option {
	return func(s *Server) { s.communities = c }
}

// WithVerifier requires a valid bearer token on every endpoint.
func WithVerifier(v auth.TokenVerifier) Option {
	return func(s *Server) { s.verifier = v }
}

// Server is an in-memory agent. Conversations live until the process exits.
type Server struct {
	mu            sync.Mutex
	conversations map[string]string // conversation ID -> lead ID

	communities []client.Community
	delay       time.Duration
	verifier    auth.TokenVerifier
	logger      *slog.Logger
}

// New creates a fake agent. Pass nil logger for default.
func New(logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		conversations: make(map[string]string),
		communities:   DefaultCommunities(),
		logger:        logger.With("component", "fakeagent"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultCommunities is the listing served unless WithCommunities is used.
func DefaultCommunities() []client.Community {
	phone := "555-0100"
	return []client.Community{
		{ID: "maple-court", Name: "Maple Court", Address: "12 Maple St", Phone: &phone},
		{ID: "harbor-view", Name: "Harbor View", Address: "400 Dock Rd"},
	}
}

// Handler returns the HTTP handler for the chat API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/chat/communities", s.handleCommunities)
	mux.HandleFunc("POST /api/v1/chat/start", s.handleStart)
	mux.HandleFunc("POST /api/v1/chat/reply", s.handleReply)

	if s.verifier != nil {
		return auth.HTTPAuthMiddleware(s.verifier)(mux)
	}
	return mux
}

func (s *Server) handleCommunities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.communities)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req client.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	community, ok := s.community(req.CommunityID)
	if !ok {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("community %q not found", req.CommunityID))
		return
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && !claims.AllowsCommunity(req.CommunityID) {
		writeDetail(w, http.StatusForbidden, fmt.Sprintf("token not valid for community %q", req.CommunityID))
		return
	}

	resp := client.StartResponse{
		LeadID:         uuid.NewString(),
		ConversationID: uuid.NewString(),
		Message: fmt.Sprintf("Hi %s! Thanks for your interest in %s. Looking for a %d bedroom from %s?",
			req.Lead.Name, community.Name, req.Preferences.Bedrooms, req.Preferences.MoveIn),
	}

	s.mu.Lock()
	s.conversations[resp.ConversationID] = resp.LeadID
	s.mu.Unlock()

	s.logger.Info("conversation started",
		"conversation_id", resp.ConversationID,
		"community_id", req.CommunityID)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	var req client.ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	leadID, ok := s.conversations[req.ConversationID]
	s.mu.Unlock()
	if !ok || leadID != req.LeadID {
		writeDetail(w, http.StatusNotFound, "conversation not found")
		return
	}

	script := ScriptFor(req.Message)
	s.logger.Debug("reply",
		"conversation_id", req.ConversationID,
		"script", script.Name)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := script.play(r.Context(), w, s.delay); err != nil {
		s.logger.Debug("reply stream ended early", "error", err)
	}
}

func (s *Server) community(id string) (client.Community, bool) {
	for _, c := range s.communities {
		if c.ID == id {
			return c, true
		}
	}
	return client.Community{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeDetail mirrors the agent's FastAPI error shape.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
