package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// RetrievalConfig bounds one retrieval pass
type RetrievalConfig struct {
	// TopK is the number of nearest neighbours requested from the index
	TopK int

	// ScoreThreshold drops candidates below this similarity so an
	// irrelevant corpus never forces low-quality context into the prompt
	ScoreThreshold float64

	// ContextBudget caps total accepted passage text, in characters
	ContextBudget int

	// RequestTimeout bounds the embedding call so a stalled backend fails
	// with ErrBackendTimeout instead of hanging the submission
	RequestTimeout time.Duration
}

// DefaultRetrievalConfig returns the standard retrieval bounds
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		TopK:           5,
		ScoreThreshold: 0.55,
		ContextBudget:  6000,
		RequestTimeout: 60 * time.Second,
	}
}

// Retrieve embeds the canonical text and assembles grounding context from
// the given corpus snapshot. It is a pure function of its inputs: no state
// is carried between calls, so identical inputs against an unchanged
// snapshot yield identical output.
//
// A non-empty subject restricts candidates to that subject and never
// widens; an empty result is a valid ungrounded outcome, not an error.
func Retrieve(
	ctx context.Context,
	embedder driven.EmbeddingService,
	index driven.CorpusIndex,
	canonicalText string,
	subject domain.Subject,
	cfg RetrievalConfig,
) (domain.RetrievedContext, error) {
	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
	}

	vector, err := embedder.EmbedQuery(ctx, canonicalText)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.RetrievedContext{}, fmt.Errorf("%w: embedding query: %v", domain.ErrBackendTimeout, err)
		}
		return domain.RetrievedContext{}, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}

	candidates, err := index.Search(ctx, vector, cfg.TopK, subject)
	if err != nil {
		return domain.RetrievedContext{}, fmt.Errorf("corpus search: %w", err)
	}

	var (
		accepted  []domain.ScoredPassage
		seenIDs   = make(map[string]bool)
		seenTexts = make(map[string]bool)
		used      int
	)
	for _, candidate := range candidates {
		if candidate.Score < cfg.ScoreThreshold {
			// Candidates arrive in descending score order; everything after
			// the first miss is below threshold too
			break
		}
		if seenIDs[candidate.Passage.ID] {
			continue
		}
		if key := foldText(candidate.Passage.Text); seenTexts[key] {
			continue
		} else {
			seenTexts[key] = true
		}

		// A passage is included whole or not at all; the first overflow
		// ends assembly rather than skipping ahead to smaller passages
		if used+len(candidate.Passage.Text) > cfg.ContextBudget {
			break
		}

		seenIDs[candidate.Passage.ID] = true
		used += len(candidate.Passage.Text)
		accepted = append(accepted, candidate)
	}

	return domain.RetrievedContext{Passages: accepted}, nil
}

// foldText normalizes passage text for near-duplicate detection
func foldText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
