// Package memory provides the in-process ConversationStore used when no
// Redis backend is configured. Records live for the process lifetime.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore implements driven.ConversationStore with an in-process
// map. Appends for one id are serialized by the store mutex; records are
// copied on the way in and out so callers never share mutable state.
type ConversationStore struct {
	mu      sync.RWMutex
	records map[string]*domain.ConversationRecord
}

// NewConversationStore creates an in-memory ConversationStore
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		records: make(map[string]*domain.ConversationRecord),
	}
}

// Create stores a new record
func (s *ConversationStore) Create(ctx context.Context, record *domain.ConversationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.QueryID] = cloneRecord(record)
	return nil
}

// Get retrieves a record by query id
func (s *ConversationStore) Get(ctx context.Context, queryID string) (*domain.ConversationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[queryID]
	if !ok {
		return nil, domain.ErrUnknownQuery
	}
	return cloneRecord(record), nil
}

// AppendFollowUp atomically appends a follow-up pair and returns the
// updated record
func (s *ConversationStore) AppendFollowUp(ctx context.Context, queryID string, followUp domain.FollowUp) (*domain.ConversationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[queryID]
	if !ok {
		return nil, domain.ErrUnknownQuery
	}

	record.FollowUps = append(record.FollowUps, followUp)
	record.UpdatedAt = time.Now().UTC()
	return cloneRecord(record), nil
}

// Delete removes a record; deleting an absent record is not an error
func (s *ConversationStore) Delete(ctx context.Context, queryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, queryID)
	return nil
}

func cloneRecord(record *domain.ConversationRecord) *domain.ConversationRecord {
	clone := *record
	clone.FollowUps = append([]domain.FollowUp(nil), record.FollowUps...)
	return &clone
}
