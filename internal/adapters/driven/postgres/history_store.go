package postgres

import (
	"context"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore implements driven.HistoryStore using PostgreSQL
type HistoryStore struct {
	db *DB
}

// NewHistoryStore creates a new HistoryStore
func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Record inserts one audit row per processed query. Re-recording the
// same query id is a no-op.
func (s *HistoryStore) Record(ctx context.Context, entry *driven.HistoryEntry) error {
	query := `
		INSERT INTO queries (query_id, modality, canonical_text, subject, query_type,
			confidence, grounded, status, error_message, processing_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (query_id) DO NOTHING
	`

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.QueryID,
		string(entry.Modality),
		entry.CanonicalText,
		string(entry.Subject),
		string(entry.QueryType),
		entry.Confidence,
		entry.Grounded,
		entry.Status,
		entry.ErrorMessage,
		entry.ProcessingTime.Milliseconds(),
		createdAt,
	)
	return err
}

// Close closes the underlying connection pool
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
