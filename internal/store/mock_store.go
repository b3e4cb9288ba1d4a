// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu           sync.RWMutex
	observations map[string]*Observation // keyed by observation ID
	order        []string                // insertion order, for stable sorting

	// SaveErr, when set, is returned by SaveObservation.
	SaveErr error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		observations: make(map[string]*Observation),
	}
}

// SaveObservation stores a copy of obs.
func (m *MockStore) SaveObservation(ctx context.Context, obs *Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	if _, exists := m.observations[obs.ID]; exists {
		return fmt.Errorf("inserting observation: duplicate id %s", obs.ID)
	}

	// Make a copy to avoid external modification
	o := *obs
	m.observations[o.ID] = &o
	m.order = append(m.order, o.ID)
	return nil
}

// GetObservation retrieves an observation by ID.
func (m *MockStore) GetObservation(ctx context.Context, id string) (*Observation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.observations[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *o
	return &result, nil
}

// ListObservations returns a conversation's observations oldest first.
func (m *MockStore) ListObservations(ctx context.Context, conversationID string, limit int) ([]*Observation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Observation
	for _, id := range m.order {
		o := m.observations[id]
		if o.ConversationID != conversationID {
			continue
		}
		c := *o
		out = append(out, &c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByKind summarizes a conversation's observations.
func (m *MockStore) CountByKind(ctx context.Context, conversationID string) (map[Kind]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[Kind]int)
	for _, o := range m.observations {
		if o.ConversationID == conversationID {
			counts[o.Kind]++
		}
	}
	return counts, nil
}

// Len returns the number of stored observations.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.observations)
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}

// Ensure MockStore implements Store
var _ Store = (*MockStore)(nil)
