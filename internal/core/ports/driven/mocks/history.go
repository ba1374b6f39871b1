package mocks

import (
	"context"
	"sync"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// MockHistoryStore collects history entries in memory for inspection
type MockHistoryStore struct {
	mu      sync.Mutex
	Entries []*driven.HistoryEntry
	Err     error
}

// NewMockHistoryStore creates a new MockHistoryStore
func NewMockHistoryStore() *MockHistoryStore {
	return &MockHistoryStore{}
}

func (m *MockHistoryStore) Record(ctx context.Context, entry *driven.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockHistoryStore) Close() error {
	return nil
}

// Len returns the number of recorded entries
func (m *MockHistoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}
