package driven

import (
	"context"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
)

// HistoryEntry is the per-query audit row written after each submission.
// History is plumbing around the engine: writes are best-effort and a
// failed write never fails the query.
type HistoryEntry struct {
	QueryID        string
	Modality       domain.Modality
	CanonicalText  string
	Subject        domain.Subject
	QueryType      domain.QueryType
	Confidence     float64
	Grounded       bool
	Status         string // completed, failed
	ErrorMessage   string
	ProcessingTime time.Duration
	CreatedAt      time.Time
}

// HistoryStore records processed queries
type HistoryStore interface {
	Record(ctx context.Context, entry *HistoryEntry) error
	Close() error
}
