// ABOUTME: Reconciler applies one reply's events to its placeholder message
// ABOUTME: Forwards side-channel events to observers and forces finalization on any unclean end

package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/2389/leasing-chat/internal/stream"
)

// Reconciler drives the placeholder message targetID from streaming to
// finalized. It is the only writer of that message and is driven by a single
// read loop.
type Reconciler struct {
	session        *Session
	targetID       string
	conversationID string
	observer       Observer
	now            func() time.Time
	done           bool
}

// NewReconciler binds a reconciler to the placeholder targetID in session.
// A nil observer discards observations.
func NewReconciler(session *Session, targetID string, observer Observer) *Reconciler {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Reconciler{
		session:        session,
		targetID:       targetID,
		conversationID: session.Snapshot().ConversationID,
		observer:       observer,
		now:            session.now,
	}
}

// Handle applies one event. Events arriving after finalization leave the
// transcript untouched but still reach observers.
func (r *Reconciler) Handle(ctx context.Context, ev stream.Event) {
	out := r.session.apply(r.targetID, ev)

	if out.Observe {
		obs := r.observation(observedKind(ev))
		obs.Event = ev
		if e, ok := ev.(stream.ErrorEvent); ok {
			obs.Err = fmt.Errorf("%w: %s", ErrAgentError, e.Message)
		}
		r.observer.Observe(ctx, obs)
	}

	if out.Finalized {
		r.done = true
		_, forced := ev.(stream.ErrorEvent)
		r.emitFinalized(ctx, forced)
	}
}

// Close ends reconciliation. If the target is still streaming it is
// finalized with the fallback text and cause is reported; a nil cause means
// the stream closed cleanly without a terminal event. Close reports whether
// it forced finalization.
func (r *Reconciler) Close(ctx context.Context, cause error) bool {
	if r.done {
		return false
	}
	r.done = true

	if !r.session.finalize(r.targetID) {
		return false
	}

	if cause == nil {
		cause = ErrStreamClosed
	}
	obs := r.observation(ObservedStreamFailure)
	obs.Err = cause
	r.observer.Observe(ctx, obs)

	r.emitFinalized(ctx, true)
	return true
}

// Finalized reports whether the target has left streaming.
func (r *Reconciler) Finalized() bool {
	return r.done
}

func (r *Reconciler) emitFinalized(ctx context.Context, forced bool) {
	obs := r.observation(ObservedFinalized)
	obs.Forced = forced
	if msg, ok := r.session.Snapshot().Message(r.targetID); ok {
		obs.Content = msg.Content
	}
	r.observer.Observe(ctx, obs)
}

func (r *Reconciler) observation(kind ObservationKind) Observation {
	return Observation{
		Kind:           kind,
		ConversationID: r.conversationID,
		MessageID:      r.targetID,
		Timestamp:      r.now(),
	}
}

func observedKind(ev stream.Event) ObservationKind {
	switch ev.(type) {
	case stream.ActionDetermined:
		return ObservedAction
	case stream.ErrorEvent:
		return ObservedAgentError
	default:
		return ObservedUnknown
	}
}
