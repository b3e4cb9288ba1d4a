// ABOUTME: Record is the flat, serializable form of a conversation observation
// ABOUTME: Shared by the store recorder and the pub/sub bus

package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2389/leasing-chat/internal/conversation"
	"github.com/2389/leasing-chat/internal/stream"
)

// Record is an observation flattened for storage and transport.
type Record struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	MessageID      string          `json:"message_id"`
	Kind           string          `json:"kind"`
	EventType      string          `json:"event_type,omitempty"`
	Detail         string          `json:"detail,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Forced         bool            `json:"forced,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// NewRecord flattens obs and assigns it a fresh ID.
func NewRecord(obs conversation.Observation) Record {
	rec := Record{
		ID:             uuid.NewString(),
		ConversationID: obs.ConversationID,
		MessageID:      obs.MessageID,
		Kind:           string(obs.Kind),
		Forced:         obs.Forced,
		Timestamp:      obs.Timestamp,
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	switch {
	case obs.Err != nil:
		rec.Detail = obs.Err.Error()
	case obs.Kind == conversation.ObservedFinalized:
		// Reply text stays out of telemetry; only its size is kept.
		rec.Detail = fmt.Sprintf("%d bytes", len(obs.Content))
	}

	if obs.Event != nil {
		rec.EventType = obs.Event.Type()
		switch ev := obs.Event.(type) {
		case stream.ActionDetermined:
			rec.Payload = validJSON(ev.Action)
		case stream.Unknown:
			rec.Payload = validJSON(ev.Raw)
		}
	}
	return rec
}

// Action decodes the payload of an action record.
func (r Record) Action() (stream.Action, error) {
	return stream.ActionDetermined{Action: r.Payload}.Decode()
}

// validJSON drops payloads that would break re-encoding.
func validJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil
	}
	return raw
}
