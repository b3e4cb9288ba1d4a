// ABOUTME: Session owns one conversation and serializes every mutation of it
// ABOUTME: Enforces the idle/awaiting/streaming guard and publishes snapshots to readers

package conversation

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/2389/leasing-chat/internal/stream"
)

var (
	// ErrBusy is returned when a send is attempted while another reply is in flight.
	ErrBusy = errors.New("a reply is already in flight")

	// ErrNotStarted is returned when sending before the conversation is bootstrapped.
	ErrNotStarted = errors.New("conversation not started")

	// ErrEmptyMessage is returned for blank user input.
	ErrEmptyMessage = errors.New("message is empty")
)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithIDGenerator sets the message ID generator. Defaults to SequenceIDs.
func WithIDGenerator(ids IDGenerator) SessionOption {
	return func(s *Session) { s.ids = ids }
}

// WithClock sets the time source for message timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithBroadcaster publishes a snapshot after every change.
func WithBroadcaster(b *Broadcaster) SessionOption {
	return func(s *Session) { s.broadcaster = b }
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is the single owner of one Conversation. Only the reply loop
// writes to it; readers take Snapshot copies or subscribe to the
// broadcaster and must expect the streaming message to change between
// observations.
type Session struct {
	mu          sync.RWMutex
	conv        Conversation
	started     bool
	ids         IDGenerator
	now         func() time.Time
	broadcaster *Broadcaster
	logger      *slog.Logger
}

// NewSession creates an idle, empty session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		conv:   Conversation{State: StateIdle},
		ids:    NewSequenceIDs("msg"),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")
	return s
}

// Snapshot returns a deep copy of the current conversation.
func (s *Session) Snapshot() Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conv.Clone()
}

// Started reports whether Seed has run.
func (s *Session) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Seed records the identifiers returned by the bootstrap call and appends
// the agent's welcome message, already finalized.
func (s *Session) Seed(leadID, conversationID, welcome string) {
	s.mutate(func(c *Conversation) bool {
		c.LeadID = leadID
		c.ConversationID = conversationID
		if welcome != "" {
			c.Messages = append(c.Messages, Message{
				ID:        s.ids.NextID(),
				Content:   welcome,
				Sender:    SenderAgent,
				CreatedAt: s.now(),
			})
		}
		s.started = true
		return true
	})
}

// BeginSend appends the user echo and the streaming agent placeholder in one
// step and moves the guard to awaiting_placeholder. It fails with ErrBusy
// unless the session is idle.
func (s *Session) BeginSend(text string) (user, placeholder Message, err error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return Message{}, Message{}, ErrNotStarted
	}
	if s.conv.State != StateIdle {
		state := s.conv.State
		s.mu.Unlock()
		s.logger.Debug("send rejected", "state", state)
		return Message{}, Message{}, ErrBusy
	}

	now := s.now()
	user = Message{
		ID:        s.ids.NextID(),
		Content:   text,
		Sender:    SenderUser,
		CreatedAt: now,
	}
	placeholder = Message{
		ID:        s.ids.NextID(),
		Sender:    SenderAgent,
		CreatedAt: now,
		Streaming: true,
	}

	next := s.conv.Clone()
	next.Messages = append(next.Messages, user, placeholder)
	next.State = StateAwaitingPlaceholder
	s.conv = next
	snap := s.conv.Clone()
	s.mu.Unlock()

	s.publish(snap)
	return user, placeholder, nil
}

// MarkStreaming records that the response stream is open.
func (s *Session) MarkStreaming() {
	s.mutate(func(c *Conversation) bool {
		if c.State != StateAwaitingPlaceholder {
			return false
		}
		c.State = StateStreaming
		return true
	})
}

// EndSend returns the guard to idle. It is called once the reply loop has
// finished, after the placeholder has been finalized.
func (s *Session) EndSend() {
	s.mutate(func(c *Conversation) bool {
		if c.State == StateIdle {
			return false
		}
		c.State = StateIdle
		return true
	})
}

// State returns the current guard state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conv.State
}

// apply runs the reducer for one event against targetID.
func (s *Session) apply(targetID string, ev stream.Event) Outcome {
	s.mu.Lock()
	next, out := Apply(s.conv, targetID, ev)
	if !out.Changed {
		s.mu.Unlock()
		return out
	}
	s.conv = next
	snap := s.conv.Clone()
	s.mu.Unlock()

	s.publish(snap)
	return out
}

// finalize forces targetID out of streaming. It reports whether anything
// changed.
func (s *Session) finalize(targetID string) bool {
	s.mu.Lock()
	next, changed := Finalize(s.conv, targetID)
	if !changed {
		s.mu.Unlock()
		return false
	}
	s.conv = next
	snap := s.conv.Clone()
	s.mu.Unlock()

	s.publish(snap)
	return true
}

// mutate applies fn in place under the lock and publishes when it reports
// a change.
func (s *Session) mutate(fn func(c *Conversation) bool) {
	s.mu.Lock()
	next := s.conv.Clone()
	if !fn(&next) {
		s.mu.Unlock()
		return
	}
	s.conv = next
	snap := s.conv.Clone()
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Session) publish(snap Conversation) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(snap)
	}
}
