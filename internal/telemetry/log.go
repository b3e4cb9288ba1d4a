// ABOUTME: LogObserver writes conversation observations as structured slog records
// ABOUTME: Levels follow severity: failures warn, actions inform, the rest is debug

package telemetry

import (
	"context"
	"log/slog"

	"github.com/2389/leasing-chat/internal/conversation"
)

// LogObserver logs every observation.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver. Pass nil logger for default.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger.With("component", "telemetry")}
}

// Observe implements conversation.Observer.
func (l *LogObserver) Observe(ctx context.Context, obs conversation.Observation) {
	attrs := []any{
		"kind", obs.Kind,
		"conversation_id", obs.ConversationID,
		"message_id", obs.MessageID,
	}
	if obs.Event != nil {
		attrs = append(attrs, "event_type", obs.Event.Type())
	}
	if obs.Err != nil {
		attrs = append(attrs, "error", obs.Err)
	}

	switch obs.Kind {
	case conversation.ObservedAgentError, conversation.ObservedStreamFailure:
		l.logger.WarnContext(ctx, "reply failure", attrs...)
	case conversation.ObservedAction:
		l.logger.InfoContext(ctx, "agent action determined", attrs...)
	case conversation.ObservedFinalized:
		attrs = append(attrs, "forced", obs.Forced, "length", len(obs.Content))
		l.logger.DebugContext(ctx, "reply finalized", attrs...)
	default:
		l.logger.DebugContext(ctx, "unrecognized event forwarded", attrs...)
	}
}
