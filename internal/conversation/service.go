// ABOUTME: Service drives one lead's conversation against the remote agent
// ABOUTME: Bootstraps the chat, then runs each reply stream through the reconciler

package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/2389/leasing-chat/internal/client"
	"github.com/2389/leasing-chat/internal/stream"
)

var (
	// ErrAlreadyStarted is returned by Start on a session that is already seeded.
	ErrAlreadyStarted = errors.New("conversation already started")

	// ErrIdleTimeout is the stream cause when no event arrived within the idle timeout.
	ErrIdleTimeout = errors.New("no reply event within idle timeout")
)

// Transport defines what the service needs from the agent API
type Transport interface {
	StartChat(ctx context.Context, req client.StartRequest) (*client.StartResponse, error)
	Reply(ctx context.Context, req client.ReplyRequest) (io.ReadCloser, error)
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStreamOptions passes decoder options to every reply stream.
func WithStreamOptions(opts ...stream.Option) ServiceOption {
	return func(s *Service) { s.streamOpts = append(s.streamOpts, opts...) }
}

// WithIdleTimeout abandons a reply when the agent goes silent for d. Zero
// disables the watchdog.
func WithIdleTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.idleTimeout = d }
}

// Service is the conversation layer between the user and the agent. Reply
// streams are read on the goroutine calling Send.
type Service struct {
	transport   Transport
	session     *Session
	observer    Observer
	streamOpts  []stream.Option
	idleTimeout time.Duration
	logger      *slog.Logger
}

// New creates a Service over session. A nil observer discards observations.
func New(transport Transport, session *Session, observer Observer, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	s := &Service{
		transport: transport,
		session:   session,
		observer:  observer,
		logger:    logger.With("component", "conversation"),
	}
	s.streamOpts = []stream.Option{stream.WithLogger(s.logger)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the session this service writes to.
func (s *Service) Session() *Session {
	return s.session
}

// Start establishes the conversation and seeds it with the agent's welcome
// message. No placeholder exists until Start has succeeded.
func (s *Service) Start(ctx context.Context, req client.StartRequest) error {
	if s.session.Started() {
		return ErrAlreadyStarted
	}

	resp, err := s.transport.StartChat(ctx, req)
	if err != nil {
		return fmt.Errorf("starting conversation: %w", err)
	}

	s.session.Seed(resp.LeadID, resp.ConversationID, resp.Message)
	s.logger.Info("conversation started",
		"lead_id", resp.LeadID,
		"conversation_id", resp.ConversationID)
	return nil
}

// Send posts text and reconciles the streamed reply into the transcript.
// It returns once the placeholder is finalized and the session is idle
// again. Only ErrEmptyMessage, ErrNotStarted and ErrBusy are returned;
// transport and stream failures end as a finalized fallback message and an
// observation instead.
//
// Cancelling ctx stops reading, finalizes the placeholder with the fallback
// text and releases the decoder.
func (s *Service) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	_, placeholder, err := s.session.BeginSend(text)
	if err != nil {
		return err
	}
	defer s.session.EndSend()

	snap := s.session.Snapshot()
	logger := s.logger.With("conversation_id", snap.ConversationID, "message_id", placeholder.ID)

	// Observers outlive a cancelled send so the forced finalization is still recorded.
	obsCtx := context.WithoutCancel(ctx)
	rec := NewReconciler(s.session, placeholder.ID, s.observer)

	streamCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	// The watchdog also covers an agent that never sends response headers.
	var watchdog *time.Timer
	if s.idleTimeout > 0 {
		watchdog = time.AfterFunc(s.idleTimeout, func() { cancel(ErrIdleTimeout) })
		defer watchdog.Stop()
	}

	body, err := s.transport.Reply(streamCtx, client.ReplyRequest{
		LeadID:         snap.LeadID,
		ConversationID: snap.ConversationID,
		Message:        text,
	})
	if err != nil {
		if streamCtx.Err() != nil {
			err = context.Cause(streamCtx)
		}
		logger.Warn("reply request failed", "error", err)
		rec.Close(obsCtx, err)
		return nil
	}
	defer body.Close()

	s.session.MarkStreaming()

	var streamErr error
	for ev, err := range stream.Events(streamCtx, body, s.streamOpts...) {
		if err != nil {
			streamErr = err
			break
		}
		if watchdog != nil {
			watchdog.Reset(s.idleTimeout)
		}
		rec.Handle(obsCtx, ev)
	}

	if streamErr != nil && streamCtx.Err() != nil {
		// Report why the stream context ended, not the read error it caused.
		streamErr = context.Cause(streamCtx)
	}

	if rec.Close(obsCtx, streamErr) {
		if streamErr == nil {
			streamErr = ErrStreamClosed
		}
		logger.Warn("reply ended without completion", "error", streamErr)
	} else if streamErr != nil {
		logger.Debug("stream error after completion", "error", streamErr)
	}

	return nil
}
