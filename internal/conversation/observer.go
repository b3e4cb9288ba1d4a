// ABOUTME: Observer contract for side-channel reply information
// ABOUTME: Actions, agent errors, unknown frames and stream failures surface here, not in the transcript

package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/2389/leasing-chat/internal/stream"
)

// ErrStreamClosed is the cause reported when the transport ended cleanly
// before a terminal event arrived.
var ErrStreamClosed = errors.New("stream closed before completion")

// ErrAgentError wraps the detail of an explicit error event.
var ErrAgentError = errors.New("agent reported error")

// ObservationKind classifies an Observation.
type ObservationKind string

const (
	ObservedAction        ObservationKind = "action"
	ObservedUnknown       ObservationKind = "unknown"
	ObservedAgentError    ObservationKind = "agent_error"
	ObservedStreamFailure ObservationKind = "stream_failure"
	ObservedFinalized     ObservationKind = "finalized"
)

// Observation is one piece of information surfaced to external observers.
type Observation struct {
	Kind           ObservationKind
	ConversationID string
	MessageID      string
	Event          stream.Event // set for action, unknown and agent_error
	Err            error        // set for agent_error and stream_failure
	Content        string       // final content, set for finalized
	Forced         bool         // finalized by fallback rather than response_complete
	Timestamp      time.Time
}

// Observer receives observations. Implementations must not block the read
// loop for long; they run on it.
type Observer interface {
	Observe(ctx context.Context, obs Observation)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, obs Observation)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, obs Observation) {
	f(ctx, obs)
}

type nopObserver struct{}

func (nopObserver) Observe(context.Context, Observation) {}
