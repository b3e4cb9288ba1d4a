// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers schema creation, observation persistence, ordering and limiting

package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string {
	return &s
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created in nested directory")
}

func TestNewSQLiteStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := t.Context()

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.SaveObservation(ctx, &Observation{
		ID: "o-1", ConversationID: "conv-1", MessageID: "msg-3", Kind: KindFinalized, Timestamp: time.Now(),
	}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetObservation(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, KindFinalized, got.Kind)
}

func TestSQLiteStore_SchemaColumns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM pragma_table_info('observations') ORDER BY cid`)
	require.NoError(t, err)
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{
		"id", "conversation_id", "message_id", "kind",
		"event_type", "detail", "payload", "forced", "timestamp",
	}, cols)

	// Reopening an existing database is a no-op for the schema.
	s, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	ts := time.Date(2026, 10, 16, 14, 30, 0, 123456789, time.FixedZone("PDT", -7*3600))
	want := &Observation{
		ID:             "o-1",
		ConversationID: "conv-1",
		MessageID:      "msg-3",
		Kind:           KindAction,
		EventType:      "action_determined",
		Payload:        strPtr(`{"action_type":"propose_tour"}`),
		Timestamp:      ts,
	}
	require.NoError(t, s.SaveObservation(ctx, want))

	got, err := s.GetObservation(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, want.ConversationID, got.ConversationID)
	assert.Equal(t, want.MessageID, got.MessageID)
	assert.Equal(t, KindAction, got.Kind)
	assert.Equal(t, "action_determined", got.EventType)
	require.NotNil(t, got.Payload)
	assert.JSONEq(t, *want.Payload, *got.Payload)
	assert.Empty(t, got.Detail)
	assert.True(t, ts.Equal(got.Timestamp), "timestamp round trips to the nanosecond")
}

func TestSQLiteStore_ForcedFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.SaveObservation(ctx, &Observation{
		ID: "o-1", ConversationID: "c", MessageID: "m", Kind: KindFinalized,
		Detail: "62 bytes", Forced: true, Timestamp: time.Now(),
	}))

	got, err := s.GetObservation(ctx, "o-1")
	require.NoError(t, err)
	assert.True(t, got.Forced)
	assert.Equal(t, "62 bytes", got.Detail)
	assert.Nil(t, got.Payload)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetObservation(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_RejectsUnknownKind(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveObservation(t.Context(), &Observation{
		ID: "o-1", ConversationID: "c", MessageID: "m", Kind: Kind("bogus"), Timestamp: time.Now(),
	})
	assert.Error(t, err)
}

func TestSQLiteStore_ListObservations(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	base := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	// Insert out of order; same timestamp for the last two
	inserts := []struct {
		id     string
		conv   string
		offset time.Duration
	}{
		{"o-3", "conv-1", 3 * time.Second},
		{"o-1", "conv-1", 1 * time.Second},
		{"other", "conv-2", 2 * time.Second},
		{"o-4a", "conv-1", 4 * time.Second},
		{"o-4b", "conv-1", 4 * time.Second},
	}
	for _, in := range inserts {
		require.NoError(t, s.SaveObservation(ctx, &Observation{
			ID: in.id, ConversationID: in.conv, MessageID: "m", Kind: KindUnknown, Timestamp: base.Add(in.offset),
		}))
	}

	got, err := s.ListObservations(ctx, "conv-1", 0)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, o := range got {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"o-1", "o-3", "o-4a", "o-4b"}, ids)

	got, err = s.ListObservations(ctx, "conv-1", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListObservations(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_ListLimitClamped(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	for i := range maxListLimit + 5 {
		require.NoError(t, s.SaveObservation(ctx, &Observation{
			ID: fmt.Sprintf("o-%03d", i), ConversationID: "c", MessageID: "m", Kind: KindAction, Timestamp: time.Now(),
		}))
	}

	got, err := s.ListObservations(ctx, "c", 10_000)
	require.NoError(t, err)
	assert.Len(t, got, maxListLimit)

	got, err = s.ListObservations(ctx, "c", -1)
	require.NoError(t, err)
	assert.Len(t, got, defaultListLimit)
}

func TestSQLiteStore_CountByKind(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	kinds := []Kind{KindAction, KindAction, KindUnknown, KindStreamFailure, KindFinalized, KindFinalized}
	for i, k := range kinds {
		require.NoError(t, s.SaveObservation(ctx, &Observation{
			ID: fmt.Sprintf("o-%d", i), ConversationID: "conv-1", MessageID: "m", Kind: k, Timestamp: time.Now(),
		}))
	}

	counts, err := s.CountByKind(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, map[Kind]int{
		KindAction:        2,
		KindUnknown:       1,
		KindStreamFailure: 1,
		KindFinalized:     2,
	}, counts)
}
