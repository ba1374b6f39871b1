package driven

import (
	"context"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
)

// ConversationStore persists conversation records for the lifetime of a
// session. Appends for a single query id are atomic: two concurrent
// AppendFollowUp calls for the same id must not lose or reorder entries.
type ConversationStore interface {
	// Create stores a new record. A record is only created alongside a
	// committed Solution, never half-written.
	Create(ctx context.Context, record *domain.ConversationRecord) error

	// Get retrieves a record by query id; domain.ErrUnknownQuery when absent
	Get(ctx context.Context, queryID string) (*domain.ConversationRecord, error)

	// AppendFollowUp atomically appends a follow-up pair to the record and
	// returns the updated record; domain.ErrUnknownQuery when absent
	AppendFollowUp(ctx context.Context, queryID string, followUp domain.FollowUp) (*domain.ConversationRecord, error)

	// Delete removes a record; deleting an absent record is not an error
	Delete(ctx context.Context, queryID string) error
}
