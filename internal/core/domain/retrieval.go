package domain

import "fmt"

// ScoredPassage pairs a passage with its retrieval relevance score in [0,1]
type ScoredPassage struct {
	Passage *Passage `json:"passage"`
	Score   float64  `json:"score"`
}

// RetrievedContext is the ordered, deduplicated set of passages grounding one
// synthesis request. An empty context is valid; the resulting answer is
// ungrounded and its confidence is capped.
type RetrievedContext struct {
	Passages []ScoredPassage `json:"passages"`
}

// Empty reports whether no passage cleared retrieval
func (rc RetrievedContext) Empty() bool {
	return len(rc.Passages) == 0
}

// TotalChars is the serialized passage text length counted against the context budget
func (rc RetrievedContext) TotalChars() int {
	total := 0
	for _, sp := range rc.Passages {
		total += len(sp.Passage.Text)
	}
	return total
}

// MeanScore is the mean retrieval score, 0 for an empty context
func (rc RetrievedContext) MeanScore() float64 {
	if len(rc.Passages) == 0 {
		return 0
	}
	sum := 0.0
	for _, sp := range rc.Passages {
		sum += sp.Score
	}
	return sum / float64(len(rc.Passages))
}

// Validate checks the ranking invariants: scores non-increasing in sequence
// order, scores within [0,1], and no duplicate passage ids.
func (rc RetrievedContext) Validate() error {
	seen := make(map[string]struct{}, len(rc.Passages))
	prev := 1.0

	for i, sp := range rc.Passages {
		if sp.Passage == nil {
			return fmt.Errorf("%w: nil passage at position %d", ErrInvalidInput, i)
		}
		if sp.Score < 0 || sp.Score > 1 {
			return fmt.Errorf("%w: score %f out of range at position %d", ErrInvalidInput, sp.Score, i)
		}
		if sp.Score > prev {
			return fmt.Errorf("%w: scores increase at position %d", ErrInvalidInput, i)
		}
		if _, dup := seen[sp.Passage.ID]; dup {
			return fmt.Errorf("%w: duplicate passage id %s", ErrInvalidInput, sp.Passage.ID)
		}
		seen[sp.Passage.ID] = struct{}{}
		prev = sp.Score
	}
	return nil
}
