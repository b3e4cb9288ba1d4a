// Package conversation owns the transcript of one lead's chat with the
// leasing agent and reconciles streamed replies into it.
//
// # Model
//
// A Conversation is an ordered list of Messages plus a guard State:
//
//	idle -> awaiting_placeholder -> streaming -> idle
//
// At most one agent message is streaming at a time. Once a message is
// finalized its content never changes again.
//
// # Reducer
//
// Apply is a pure function from (Conversation, target ID, event) to the next
// Conversation and an Outcome. Deltas append in arrival order, a completion
// replaces the accumulated text and finalizes, an error event finalizes with
// FallbackText. Actions and unknown events are reported through Outcome for
// observers and leave the transcript alone.
//
// # Session and Reconciler
//
// Session serializes every write behind a mutex and publishes deep-copied
// snapshots to a Broadcaster so renderers never read live state. For each
// send, a Reconciler is the single writer of the placeholder message. When
// the stream ends without a terminal event (silent close, transport failure,
// decoder limit, idle timeout or cancellation) Close forces the fallback.
//
// # Service
//
//	svc := conversation.New(agentClient, session, observer, logger,
//	    conversation.WithIdleTimeout(2*time.Minute))
//	if err := svc.Start(ctx, startReq); err != nil { ... }
//	err := svc.Send(ctx, "Do you have 2 bedrooms?")
//
// Send only fails for ErrEmptyMessage, ErrNotStarted and ErrBusy. Every
// other outcome is visible in the transcript and through the Observer.
package conversation
