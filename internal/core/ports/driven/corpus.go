package driven

import (
	"context"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
)

// CorpusIndex is a self-consistent, read-only corpus snapshot: vector index
// plus metadata, built and versioned together. Concurrent searches are
// unrestricted; a snapshot never changes after construction.
type CorpusIndex interface {
	// Search returns up to k passages ranked by descending similarity to the
	// query vector. When subject is non-empty, candidates are pre-filtered to
	// that subject; the search never widens beyond it.
	Search(ctx context.Context, vector []float32, k int, subject domain.Subject) ([]domain.ScoredPassage, error)

	// Dimensions returns the embedding dimension the snapshot was built with
	Dimensions() int

	// Size returns the number of passages in the snapshot
	Size() int

	// Version identifies the build this snapshot came from
	Version() string
}

// CorpusProvider hands out the active corpus snapshot. Implementations
// publish rebuilt snapshots with an atomic swap so in-flight queries always
// see a self-consistent index/metadata pair.
type CorpusProvider interface {
	Active() CorpusIndex
}
