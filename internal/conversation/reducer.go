// ABOUTME: Pure reducer projecting stream events onto a conversation value
// ABOUTME: Implements delta append, completion replace, error fallback and forced finalization

package conversation

import (
	"github.com/2389/leasing-chat/internal/stream"
)

// Outcome describes what applying one event did.
type Outcome struct {
	Changed   bool // transcript content or flags changed
	Finalized bool // this event moved the target out of streaming
	Observe   bool // the event carries side-channel information for observers
}

// Apply projects ev onto the message targetID and returns the new
// conversation. The input value is never modified. Events for a target that
// is missing or already finalized change nothing.
func Apply(c Conversation, targetID string, ev stream.Event) (Conversation, Outcome) {
	var out Outcome
	switch ev.(type) {
	case stream.ActionDetermined, stream.Unknown, stream.ErrorEvent:
		out.Observe = true
	}

	i := c.indexOf(targetID)
	if i < 0 || !c.Messages[i].Streaming {
		return c, out
	}

	switch e := ev.(type) {
	case stream.ContentDelta:
		if e.Content == "" {
			return c, out
		}
		next := c.Clone()
		next.Messages[i].Content += e.Content
		out.Changed = true
		return next, out

	case stream.ResponseComplete:
		next := c.Clone()
		next.Messages[i].Content = e.Reply
		next.Messages[i].Streaming = false
		out.Changed = true
		out.Finalized = true
		return next, out

	case stream.ErrorEvent:
		next, _ := Finalize(c, targetID)
		out.Changed = true
		out.Finalized = true
		return next, out
	}

	// ActionDetermined and Unknown never touch the transcript.
	return c, out
}

// Finalize forces targetID out of streaming with FallbackText. It reports
// false, and returns c unchanged, when the target is missing or already
// finalized.
func Finalize(c Conversation, targetID string) (Conversation, bool) {
	i := c.indexOf(targetID)
	if i < 0 || !c.Messages[i].Streaming {
		return c, false
	}
	next := c.Clone()
	next.Messages[i].Content = FallbackText
	next.Messages[i].Streaming = false
	return next, true
}
