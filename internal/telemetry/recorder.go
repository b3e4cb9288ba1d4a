// ABOUTME: Recorder persists conversation observations to the store
// ABOUTME: Writes use their own timeout so a cancelled send is still recorded

package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/2389/leasing-chat/internal/conversation"
	"github.com/2389/leasing-chat/internal/store"
)

const defaultSaveTimeout = 5 * time.Second

// Recorder writes observations to a store.Store.
type Recorder struct {
	store   store.Store
	timeout time.Duration
	logger  *slog.Logger
}

// NewRecorder creates a Recorder. Pass nil logger for default.
func NewRecorder(s store.Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:   s,
		timeout: defaultSaveTimeout,
		logger:  logger.With("component", "recorder"),
	}
}

// Observe implements conversation.Observer. Save failures are logged, never
// returned to the read loop.
func (r *Recorder) Observe(ctx context.Context, obs conversation.Observation) {
	rec := NewRecord(obs)

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	row := &store.Observation{
		ID:             rec.ID,
		ConversationID: rec.ConversationID,
		MessageID:      rec.MessageID,
		Kind:           store.Kind(rec.Kind),
		EventType:      rec.EventType,
		Detail:         rec.Detail,
		Forced:         rec.Forced,
		Timestamp:      rec.Timestamp,
	}
	if len(rec.Payload) > 0 {
		payload := string(rec.Payload)
		row.Payload = &payload
	}

	if err := r.store.SaveObservation(saveCtx, row); err != nil {
		r.logger.Error("failed to save observation",
			"error", err,
			"observation_id", row.ID,
			"conversation_id", row.ConversationID,
			"kind", row.Kind)
		return
	}
	r.logger.Debug("observation saved",
		"observation_id", row.ID,
		"kind", row.Kind)
}
