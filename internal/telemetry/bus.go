// ABOUTME: Bus publishes conversation observations as JSON messages over watermill
// ABOUTME: Listen consumes them, e.g. to surface agent actions in a terminal

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/2389/leasing-chat/internal/conversation"
)

const (
	// DefaultTopic is used when no bus topic is configured.
	DefaultTopic = "leasing.observations"

	metadataKind = "kind"
)

// NewGoChannel creates the in-process pub/sub used for the bus.
func NewGoChannel(logger *slog.Logger) *gochannel.GoChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger.With("component", "bus")),
	)
}

// Bus publishes observations on a topic.
type Bus struct {
	pub    message.Publisher
	topic  string
	logger *slog.Logger
}

// NewBus creates a Bus. An empty topic uses DefaultTopic.
func NewBus(pub message.Publisher, topic string, logger *slog.Logger) *Bus {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		pub:    pub,
		topic:  topic,
		logger: logger.With("component", "bus", "topic", topic),
	}
}

// Topic returns the topic observations are published on.
func (b *Bus) Topic() string {
	return b.topic
}

// Observe implements conversation.Observer.
func (b *Bus) Observe(ctx context.Context, obs conversation.Observation) {
	rec := NewRecord(obs)
	payload, err := json.Marshal(rec)
	if err != nil {
		b.logger.Error("failed to encode observation", "error", err, "kind", rec.Kind)
		return
	}

	msg := message.NewMessage(rec.ID, payload)
	msg.Metadata.Set(metadataKind, rec.Kind)
	msg.SetContext(context.WithoutCancel(ctx))

	if err := b.pub.Publish(b.topic, msg); err != nil {
		b.logger.Warn("failed to publish observation", "error", err, "kind", rec.Kind)
	}
}

// Listen subscribes to topic and calls fn for every record until ctx is
// done or the subscription closes. Messages that do not decode are acked
// and skipped.
func Listen(ctx context.Context, sub message.Subscriber, topic string, fn func(Record)) error {
	if topic == "" {
		topic = DefaultTopic
	}
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var rec Record
			if err := json.Unmarshal(msg.Payload, &rec); err == nil {
				fn(rec)
			}
			msg.Ack()
		}
	}
}
