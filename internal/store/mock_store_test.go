// ABOUTME: Tests for the in-memory MockStore
// ABOUTME: Ensures it behaves like SQLiteStore for the calls telemetry makes

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_SaveListCount(t *testing.T) {
	m := NewMockStore()
	ctx := t.Context()
	base := time.Now()

	require.NoError(t, m.SaveObservation(ctx, &Observation{ID: "b", ConversationID: "c1", Kind: KindFinalized, Timestamp: base.Add(time.Second)}))
	require.NoError(t, m.SaveObservation(ctx, &Observation{ID: "a", ConversationID: "c1", Kind: KindAction, Timestamp: base}))
	require.NoError(t, m.SaveObservation(ctx, &Observation{ID: "x", ConversationID: "c2", Kind: KindAction, Timestamp: base}))

	got, err := m.ListObservations(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	counts, err := m.CountByKind(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, map[Kind]int{KindAction: 1, KindFinalized: 1}, counts)
	assert.Equal(t, 3, m.Len())
}

func TestMockStore_CopiesOnSaveAndGet(t *testing.T) {
	m := NewMockStore()
	ctx := t.Context()

	obs := &Observation{ID: "a", ConversationID: "c", Detail: "original"}
	require.NoError(t, m.SaveObservation(ctx, obs))
	obs.Detail = "mutated"

	got, err := m.GetObservation(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "original", got.Detail)
}

func TestMockStore_Errors(t *testing.T) {
	m := NewMockStore()
	ctx := t.Context()

	_, err := m.GetObservation(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.SaveObservation(ctx, &Observation{ID: "a"}))
	assert.Error(t, m.SaveObservation(ctx, &Observation{ID: "a"}), "duplicate id")

	boom := errors.New("disk full")
	m.SaveErr = boom
	assert.ErrorIs(t, m.SaveObservation(ctx, &Observation{ID: "b"}), boom)
}
