// Package redis provides the Redis-backed ConversationStore used when
// conversation continuity must survive process restarts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

const conversationPrefix = "conversation:"

// maxAppendRetries bounds optimistic-lock retries on contended appends
const maxAppendRetries = 5

// ConversationStore implements driven.ConversationStore using Redis.
// Records expire via TTL per the hosting application's retention policy.
type ConversationStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewConversationStore creates a Redis-backed ConversationStore.
// retention <= 0 disables expiry.
func NewConversationStore(client *redis.Client, retention time.Duration) *ConversationStore {
	return &ConversationStore{client: client, retention: retention}
}

// Create stores a new record
func (s *ConversationStore) Create(ctx context.Context, record *domain.ConversationRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation record: %w", err)
	}

	if err := s.client.Set(ctx, conversationPrefix+record.QueryID, data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("failed to save conversation record: %w", err)
	}
	return nil
}

// Get retrieves a record by query id
func (s *ConversationStore) Get(ctx context.Context, queryID string) (*domain.ConversationRecord, error) {
	data, err := s.client.Get(ctx, conversationPrefix+queryID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrUnknownQuery
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation record: %w", err)
	}

	var record domain.ConversationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation record: %w", err)
	}
	return &record, nil
}

// AppendFollowUp atomically appends a follow-up pair using an optimistic
// WATCH transaction: a concurrent append to the same id aborts the
// transaction and the read-modify-write retries on the fresh record, so
// appends are never lost or reordered.
func (s *ConversationStore) AppendFollowUp(ctx context.Context, queryID string, followUp domain.FollowUp) (*domain.ConversationRecord, error) {
	key := conversationPrefix + queryID
	var updated *domain.ConversationRecord

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrUnknownQuery
		}
		if err != nil {
			return fmt.Errorf("failed to get conversation record: %w", err)
		}

		var record domain.ConversationRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("failed to unmarshal conversation record: %w", err)
		}

		record.FollowUps = append(record.FollowUps, followUp)
		record.UpdatedAt = time.Now().UTC()

		out, err := json.Marshal(&record)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl())
			return nil
		})
		if err != nil {
			return err
		}

		updated = &record
		return nil
	}

	for i := 0; i < maxAppendRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to append follow-up after %d retries", maxAppendRetries)
}

// Delete removes a record; deleting an absent record is not an error
func (s *ConversationStore) Delete(ctx context.Context, queryID string) error {
	if err := s.client.Del(ctx, conversationPrefix+queryID).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation record: %w", err)
	}
	return nil
}

func (s *ConversationStore) ttl() time.Duration {
	if s.retention <= 0 {
		return 0 // no expiry
	}
	return s.retention
}
