// ABOUTME: Store interface and data types for the reply observation ledger
// ABOUTME: Observations are telemetry about reply streams; transcripts are never persisted

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Kind classifies a stored observation
type Kind string

const (
	KindAction        Kind = "action"
	KindAgentError    Kind = "agent_error"
	KindUnknown       Kind = "unknown"
	KindStreamFailure Kind = "stream_failure"
	KindFinalized     Kind = "finalized"
)

// Observation is one recorded fact about a reply stream
type Observation struct {
	ID             string
	ConversationID string
	MessageID      string
	Kind           Kind
	EventType      string  // wire type of the event, empty for stream_failure and finalized
	Detail         string  // error text for failures, reply size for finalized
	Payload        *string // raw JSON payload for action and unknown
	Forced         bool    // finalized with the fallback text
	Timestamp      time.Time
}

// Store defines the interface for observation persistence
type Store interface {
	SaveObservation(ctx context.Context, obs *Observation) error
	GetObservation(ctx context.Context, id string) (*Observation, error)

	// ListObservations returns a conversation's observations oldest first.
	ListObservations(ctx context.Context, conversationID string, limit int) ([]*Observation, error)

	// CountByKind summarizes a conversation's observations.
	CountByKind(ctx context.Context, conversationID string) (map[Kind]int, error)

	Close() error
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
