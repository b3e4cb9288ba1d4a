// ABOUTME: Conversation transcript types: messages, senders and the send-state guard
// ABOUTME: Also provides message ID generators unique within one conversation

package conversation

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// FallbackText replaces the agent message whenever a reply ends in any way
// other than response_complete. Server errors and broken connections are
// deliberately indistinguishable to the reader.
const FallbackText = "Sorry, there was an error processing your request."

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// State is the single-flight guard for outbound replies.
type State string

const (
	// StateIdle accepts a new send.
	StateIdle State = "idle"
	// StateAwaitingPlaceholder means the reply request is issued and its
	// placeholder is waiting for the response stream to open.
	StateAwaitingPlaceholder State = "awaiting_placeholder"
	// StateStreaming means the response stream is open and being reconciled.
	StateStreaming State = "streaming"
)

// Message is one entry of the transcript.
type Message struct {
	ID        string
	Content   string
	Sender    Sender
	CreatedAt time.Time
	Streaming bool
}

// Conversation is an ordered transcript. It is append-only except for the
// in-place update of the one message currently streaming.
type Conversation struct {
	LeadID         string
	ConversationID string
	Messages       []Message
	State          State
}

// Clone returns a deep copy safe to hand to readers.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = slices.Clone(c.Messages)
	return out
}

// Message returns the message with the given ID.
func (c Conversation) Message(id string) (Message, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.Messages[i], true
	}
	return Message{}, false
}

// Streaming returns the message currently streaming, if any.
func (c Conversation) Streaming() (Message, bool) {
	for _, m := range c.Messages {
		if m.Streaming {
			return m, true
		}
	}
	return Message{}, false
}

// StreamingCount reports how many messages are marked streaming. Anything
// above one is a broken transcript.
func (c Conversation) StreamingCount() int {
	n := 0
	for _, m := range c.Messages {
		if m.Streaming {
			n++
		}
	}
	return n
}

func (c Conversation) indexOf(id string) int {
	return slices.IndexFunc(c.Messages, func(m Message) bool { return m.ID == id })
}

// IDGenerator hands out message IDs unique within one conversation.
type IDGenerator interface {
	NextID() string
}

// SequenceIDs is a monotonic per-conversation counter. The owning Session
// serializes calls.
type SequenceIDs struct {
	prefix string
	n      uint64
}

// NewSequenceIDs creates a counter producing "<prefix>-1", "<prefix>-2", ...
func NewSequenceIDs(prefix string) *SequenceIDs {
	return &SequenceIDs{prefix: prefix}
}

// NextID returns the next ID in the sequence.
func (s *SequenceIDs) NextID() string {
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

// UUIDs produces random v4 UUIDs.
type UUIDs struct{}

// NextID returns a new UUID string.
func (UUIDs) NextID() string {
	return uuid.NewString()
}
