// ABOUTME: Observation ledger queries for the SQLite store
// ABOUTME: Save, fetch, list by conversation and per-kind counts

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveObservation persists an observation to the database
func (s *SQLiteStore) SaveObservation(ctx context.Context, obs *Observation) error {
	query := `
		INSERT INTO observations (
			id, conversation_id, message_id, kind, event_type, detail, payload, forced, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	forced := 0
	if obs.Forced {
		forced = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		obs.ID,
		obs.ConversationID,
		obs.MessageID,
		string(obs.Kind),
		obs.EventType,
		obs.Detail,
		obs.Payload,
		forced,
		obs.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting observation: %w", err)
	}

	s.logger.Debug("saved observation",
		"id", obs.ID,
		"conversation_id", obs.ConversationID,
		"kind", obs.Kind,
	)
	return nil
}

// GetObservation retrieves a single observation by ID
func (s *SQLiteStore) GetObservation(ctx context.Context, id string) (*Observation, error) {
	query := `
		SELECT id, conversation_id, message_id, kind, event_type, detail, payload, forced, timestamp
		FROM observations
		WHERE id = ?
	`

	obs, err := scanObservation(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying observation: %w", err)
	}
	return obs, nil
}

// ListObservations retrieves observations for a conversation, ordered by timestamp ASC
func (s *SQLiteStore) ListObservations(ctx context.Context, conversationID string, limit int) ([]*Observation, error) {
	query := `
		SELECT id, conversation_id, message_id, kind, event_type, detail, payload, forced, timestamp
		FROM observations
		WHERE conversation_id = ?
		ORDER BY timestamp ASC, rowid ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, conversationID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	var out []*Observation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		out = append(out, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating observations: %w", err)
	}
	return out, nil
}

// CountByKind returns how many observations of each kind a conversation has
func (s *SQLiteStore) CountByKind(ctx context.Context, conversationID string) (map[Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM observations
		WHERE conversation_id = ?
		GROUP BY kind
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("counting observations: %w", err)
	}
	defer rows.Close()

	counts := make(map[Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[Kind(kind)] = n
	}
	return counts, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanObservation(row rowScanner) (*Observation, error) {
	obs := &Observation{}
	var kind, timestampStr string
	var forced int

	err := row.Scan(
		&obs.ID,
		&obs.ConversationID,
		&obs.MessageID,
		&kind,
		&obs.EventType,
		&obs.Detail,
		&obs.Payload,
		&forced,
		&timestampStr,
	)
	if err != nil {
		return nil, err
	}

	obs.Kind = Kind(kind)
	obs.Forced = forced != 0
	obs.Timestamp, err = time.Parse(timeLayout, timestampStr)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}
	return obs, nil
}
