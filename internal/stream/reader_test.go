// ABOUTME: Tests for the Events read loop over io.Reader transports
// ABOUTME: Covers short reads, transport failures, cancellation and early stop

package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, seq func(func(Event, error) bool)) ([]Event, error) {
	t.Helper()
	var events []Event
	for ev, err := range seq {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func TestEvents_OneByteReads(t *testing.T) {
	wire, want := sampleWire(t)

	got, err := collect(t, Events(t.Context(), iotest.OneByteReader(strings.NewReader(wire))))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEvents_HalfReads(t *testing.T) {
	wire, want := sampleWire(t)

	got, err := collect(t, Events(t.Context(), iotest.HalfReader(strings.NewReader(wire)), WithReadBuffer(7)))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEvents_DataErrReader(t *testing.T) {
	wire, want := sampleWire(t)

	// Returns io.EOF together with the final bytes.
	got, err := collect(t, Events(t.Context(), iotest.DataErrReader(strings.NewReader(wire))))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEvents_TransportFailureAfterDeltas(t *testing.T) {
	wire := "data: {\"type\":\"content_delta\",\"data\":{\"content\":\"a\"}}\n" +
		"data: {\"type\":\"content_delta\",\"data\":{\"content\":\"b\"}}\n" +
		"data: {\"type\":\"content_del"
	reset := errors.New("connection reset by peer")
	r := io.MultiReader(strings.NewReader(wire), iotest.ErrReader(reset))

	got, err := collect(t, Events(t.Context(), r))
	require.Error(t, err)
	assert.ErrorIs(t, err, reset)
	assert.Equal(t, []Event{
		ContentDelta{Content: "a"},
		ContentDelta{Content: "b"},
	}, got)
}

func TestEvents_SilentCloseEndsWithoutError(t *testing.T) {
	wire := "data: {\"type\":\"content_delta\",\"data\":{\"content\":\"a\"}}\n"

	got, err := collect(t, Events(t.Context(), strings.NewReader(wire)))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEvents_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	got, err := collect(t, Events(ctx, strings.NewReader("data: {}\n")))
	assert.Empty(t, got)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvents_DecoderLimitSurfaces(t *testing.T) {
	wire := "data: x\ndata: y\ndata: z\n"

	_, err := collect(t, Events(t.Context(), strings.NewReader(wire), WithMaxMalformed(2)))
	assert.ErrorIs(t, err, ErrTooManyMalformed)
}

func TestEvents_StopEarly(t *testing.T) {
	wire, _ := sampleWire(t)

	count := 0
	for ev, err := range Events(t.Context(), strings.NewReader(wire)) {
		require.NoError(t, err)
		require.NotNil(t, ev)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestEncode_RoundTrip(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteEvent(&b, ErrorEvent{Message: "boom"}))
	assert.Equal(t, "data: {\"type\":\"error\",\"data\":{\"error\":\"boom\"}}\n\n", b.String())

	raw := `{"type":"ping","data":{"n":1}}`
	encoded, err := Encode(Unknown{Name: "ping", Raw: []byte(raw)})
	require.NoError(t, err)
	assert.Equal(t, "data: "+raw+"\n\n", string(encoded))
}
