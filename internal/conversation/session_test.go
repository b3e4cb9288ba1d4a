// ABOUTME: Tests for Session ownership, the single-flight guard and snapshot publishing
// ABOUTME: Verifies busy rejection, seeding and that readers only ever see copies

package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/leasing-chat/internal/stream"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func seededSession(opts ...SessionOption) *Session {
	s := NewSession(append([]SessionOption{WithClock(fixedClock())}, opts...)...)
	s.Seed("lead-1", "conv-1", "Welcome to Maple Court!")
	return s
}

func TestSession_Seed(t *testing.T) {
	s := seededSession()

	snap := s.Snapshot()
	assert.True(t, s.Started())
	assert.Equal(t, "lead-1", snap.LeadID)
	assert.Equal(t, "conv-1", snap.ConversationID)
	assert.Equal(t, StateIdle, snap.State)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, Message{
		ID:        "msg-1",
		Content:   "Welcome to Maple Court!",
		Sender:    SenderAgent,
		CreatedAt: fixedClock()(),
	}, snap.Messages[0])
}

func TestSession_BeginSendRequiresStart(t *testing.T) {
	s := NewSession()
	_, _, err := s.BeginSend("hello")
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Empty(t, s.Snapshot().Messages)
}

func TestSession_BeginSendAppendsEchoAndPlaceholder(t *testing.T) {
	s := seededSession()

	user, placeholder, err := s.BeginSend("Do you allow pets?")
	require.NoError(t, err)

	assert.Equal(t, SenderUser, user.Sender)
	assert.Equal(t, "Do you allow pets?", user.Content)
	assert.False(t, user.Streaming)

	assert.Equal(t, SenderAgent, placeholder.Sender)
	assert.Empty(t, placeholder.Content)
	assert.True(t, placeholder.Streaming)
	assert.NotEqual(t, user.ID, placeholder.ID)

	snap := s.Snapshot()
	assert.Equal(t, StateAwaitingPlaceholder, snap.State)
	require.Len(t, snap.Messages, 3)
	assert.Equal(t, []string{"msg-1", user.ID, placeholder.ID},
		[]string{snap.Messages[0].ID, snap.Messages[1].ID, snap.Messages[2].ID})
}

func TestSession_BusyGuard(t *testing.T) {
	s := seededSession()

	_, _, err := s.BeginSend("first")
	require.NoError(t, err)

	_, _, err = s.BeginSend("second")
	assert.ErrorIs(t, err, ErrBusy, "rejected while awaiting placeholder")

	s.MarkStreaming()
	assert.Equal(t, StateStreaming, s.State())

	_, _, err = s.BeginSend("third")
	assert.ErrorIs(t, err, ErrBusy, "rejected while streaming")
	assert.Len(t, s.Snapshot().Messages, 3, "rejected sends append nothing")

	s.EndSend()
	assert.Equal(t, StateIdle, s.State())

	_, _, err = s.BeginSend("fourth")
	assert.NoError(t, err)
}

func TestSession_MarkStreamingOnlyFromAwaiting(t *testing.T) {
	s := seededSession()
	s.MarkStreaming()
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	s := seededSession()
	_, p, err := s.BeginSend("hi")
	require.NoError(t, err)
	s.MarkStreaming()

	snap := s.Snapshot()
	snap.Messages[0].Content = "tampered"

	s.apply(p.ID, stream.ContentDelta{Content: "Hel"})
	assert.Empty(t, content(t, snap, p.ID).Content, "old snapshot unchanged by later writes")

	fresh := s.Snapshot()
	assert.Equal(t, "Welcome to Maple Court!", fresh.Messages[0].Content)
	assert.Equal(t, "Hel", content(t, fresh, p.ID).Content)
}

func TestSession_PublishesSnapshots(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()
	ch, _ := b.Subscribe(t.Context())

	s := seededSession(WithBroadcaster(b))
	_, p, err := s.BeginSend("hi")
	require.NoError(t, err)
	s.MarkStreaming()
	s.apply(p.ID, stream.ContentDelta{Content: "Hey"})
	s.apply(p.ID, stream.Unknown{Name: "ping"}) // no change, no publish
	s.finalize(p.ID)
	s.EndSend()

	var states []State
	var contents []string
	for range 6 {
		select {
		case snap := <-ch:
			states = append(states, snap.State)
			if msg, ok := snap.Message(p.ID); ok {
				contents = append(contents, msg.Content)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for snapshot")
		}
	}

	assert.Equal(t, []State{StateIdle, StateAwaitingPlaceholder, StateStreaming, StateStreaming, StateStreaming, StateIdle}, states)
	assert.Equal(t, []string{"", "", "Hey", FallbackText, FallbackText}, contents)

	select {
	case snap := <-ch:
		t.Fatalf("unexpected extra snapshot in state %s", snap.State)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSession_CustomIDGenerator(t *testing.T) {
	s := NewSession(WithIDGenerator(NewSequenceIDs("m")))
	s.Seed("l", "c", "")
	assert.Empty(t, s.Snapshot().Messages, "empty welcome is not appended")

	u, p, err := s.BeginSend("x")
	require.NoError(t, err)
	assert.Equal(t, "m-1", u.ID)
	assert.Equal(t, "m-2", p.ID)
}
