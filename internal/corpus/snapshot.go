// Package corpus holds the knowledge-base snapshot: a brute-force cosine
// vector index and its parallel passage metadata, built together offline and
// read-only at query time. Rebuilds publish a fresh snapshot through Holder
// with an atomic swap so live queries never observe a half-built corpus.
package corpus

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.CorpusIndex = (*Snapshot)(nil)

// Snapshot is one immutable corpus build. Vectors are stored L2-normalized
// so similarity is a dot product mapped to [0,1].
type Snapshot struct {
	version    string
	dimensions int
	passages   []*domain.Passage
	vectors    [][]float32
}

// BuildSnapshot validates passages against the expected embedding dimension
// and indexes them. Duplicate ids and dimension mismatches are corpus
// integrity violations: the snapshot is rejected rather than served.
func BuildSnapshot(version string, dimensions int, passages []*domain.Passage) (*Snapshot, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: non-positive embedding dimension %d", domain.ErrCorpusIntegrity, dimensions)
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("%w: snapshot has no passages", domain.ErrCorpusIntegrity)
	}

	seen := make(map[string]struct{}, len(passages))
	vectors := make([][]float32, len(passages))

	for i, p := range passages {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: passage %d has empty id", domain.ErrCorpusIntegrity, i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate passage id %s", domain.ErrCorpusIntegrity, p.ID)
		}
		seen[p.ID] = struct{}{}

		if len(p.Embedding) != dimensions {
			return nil, fmt.Errorf("%w: passage %s has dimension %d, index built with %d",
				domain.ErrCorpusIntegrity, p.ID, len(p.Embedding), dimensions)
		}
		vectors[i] = normalize(p.Embedding)
	}

	return &Snapshot{
		version:    version,
		dimensions: dimensions,
		passages:   passages,
		vectors:    vectors,
	}, nil
}

// Search returns up to k passages ranked by descending cosine similarity,
// optionally pre-filtered to one subject. Ties break by insertion order so
// identical queries against the same snapshot rank identically.
func (s *Snapshot) Search(ctx context.Context, vector []float32, k int, subject domain.Subject) ([]domain.ScoredPassage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: query vector dimension %d, index built with %d",
			domain.ErrCorpusIntegrity, len(vector), s.dimensions)
	}
	if k <= 0 || s.Size() == 0 {
		return nil, nil
	}

	query := normalize(vector)

	type hit struct {
		idx   int
		score float64
	}
	hits := make([]hit, 0, len(s.passages))

	for i, p := range s.passages {
		if subject != "" && p.Subject != subject {
			continue
		}
		// vectors are normalized; map cosine from [-1,1] to [0,1]
		score := (1 + dot(s.vectors[i], query)) / 2
		hits = append(hits, hit{idx: i, score: score})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].idx < hits[b].idx
	})

	if k > len(hits) {
		k = len(hits)
	}
	results := make([]domain.ScoredPassage, k)
	for i := 0; i < k; i++ {
		results[i] = domain.ScoredPassage{
			Passage: s.passages[hits[i].idx],
			Score:   hits[i].score,
		}
	}
	return results, nil
}

// Dimensions returns the embedding dimension the snapshot was built with
func (s *Snapshot) Dimensions() int {
	return s.dimensions
}

// Size returns the number of passages in the snapshot
func (s *Snapshot) Size() int {
	return len(s.passages)
}

// Version identifies the build this snapshot came from
func (s *Snapshot) Version() string {
	return s.version
}

// Passages exposes the snapshot contents for persistence and stats
func (s *Snapshot) Passages() []*domain.Passage {
	return s.passages
}

// Stats counts passages by subject and source type
func (s *Snapshot) Stats() (bySubject map[domain.Subject]int, bySource map[domain.SourceType]int) {
	bySubject = make(map[domain.Subject]int)
	bySource = make(map[domain.SourceType]int)
	for _, p := range s.passages {
		bySubject[p.Subject]++
		bySource[p.SourceType]++
	}
	return bySubject, bySource
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	inv := float32(1 / math.Sqrt(norm))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
