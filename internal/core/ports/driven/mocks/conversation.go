package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
)

// MockConversationStore is an in-memory ConversationStore for testing
type MockConversationStore struct {
	mu      sync.Mutex
	records map[string]*domain.ConversationRecord

	CreateErr error
	GetErr    error
}

// NewMockConversationStore creates a new MockConversationStore
func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{
		records: make(map[string]*domain.ConversationRecord),
	}
}

func (m *MockConversationStore) Create(ctx context.Context, record *domain.ConversationRecord) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *record
	m.records[record.QueryID] = &clone
	return nil
}

func (m *MockConversationStore) Get(ctx context.Context, queryID string) (*domain.ConversationRecord, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[queryID]
	if !ok {
		return nil, domain.ErrUnknownQuery
	}
	clone := *record
	return &clone, nil
}

func (m *MockConversationStore) AppendFollowUp(ctx context.Context, queryID string, followUp domain.FollowUp) (*domain.ConversationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[queryID]
	if !ok {
		return nil, domain.ErrUnknownQuery
	}
	record.FollowUps = append(record.FollowUps, followUp)
	record.UpdatedAt = time.Now().UTC()
	clone := *record
	return &clone, nil
}

func (m *MockConversationStore) Delete(ctx context.Context, queryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, queryID)
	return nil
}

// Len returns the number of stored records
func (m *MockConversationStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
