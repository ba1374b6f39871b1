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

// tutorSystemPrompt is the fixed prompt contract with the generative
// backend. The parser depends on the step-marker format it mandates, so the
// two evolve together.
const tutorSystemPrompt = `You are an expert JEE Mains tutor specializing in Mathematics, Physics, and Chemistry.
You provide clear, step-by-step solutions that are:
1. Aligned with the JEE Mains syllabus
2. Based on NCERT concepts and formulas
3. Structured with clear reasoning at each step
4. Include relevant formulas and their derivations when needed
5. Use provided context when available

Format your responses as:
- **Step 1: Understanding the Problem** - Identify what's given and what needs to be found
- **Step 2: Relevant Concepts/Formulas** - List the concepts and formulas needed
- **Step 3: Solution** - Detailed step-by-step solution with calculations
- **Step 4: Final Answer** - Clear statement of the final answer
- **Verification** (if applicable) - Quick check to verify the answer

Always be precise, educational, and focus on helping students understand the concepts.`

// SynthesisConfig bounds one synthesis request
type SynthesisConfig struct {
	Temperature float32
	MaxTokens   int

	// UngroundedCeiling caps confidence when no retrieved context backs the
	// answer. An ungrounded answer must never report high confidence.
	UngroundedCeiling float64

	// RequestTimeout bounds each generation call so a stalled backend fails
	// with ErrBackendTimeout instead of hanging the request
	RequestTimeout time.Duration
}

// DefaultSynthesisConfig returns the standard synthesis bounds
func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		Temperature:       0.7,
		MaxTokens:         2048,
		UngroundedCeiling: 0.40,
		RequestTimeout:    60 * time.Second,
	}
}

// Synthesize sends the canonical query with its grounding context to the
// generative backend, parses the response into a structured Solution, and
// scores confidence. Image bytes, when present, are attached so the backend
// sees the original problem photograph alongside the extracted text.
func Synthesize(
	ctx context.Context,
	generator driven.GeneratorService,
	query domain.Query,
	retrieved domain.RetrievedContext,
	image []byte,
	cfg SynthesisConfig,
) (*domain.Solution, error) {
	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
	}

	raw, err := generator.Complete(ctx, driven.PromptRequest{
		System:      tutorSystemPrompt,
		User:        buildSolutionPrompt(query.CanonicalText, retrieved),
		Image:       image,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: generation: %v", domain.ErrBackendTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	solution, outcome := ParseResponse(raw, query.QueryType)
	if outcome == ParseFailure {
		return nil, fmt.Errorf("%w: backend response had no understanding, steps, or final answer", domain.ErrSynthesisFailure)
	}

	solution.Grounded = !retrieved.Empty()
	solution.ConfidenceScore = confidence(solution, retrieved, cfg.UngroundedCeiling)
	return solution, nil
}

// SynthesizeFollowUp answers a follow-up question with the full prior
// conversation: the original query, its solution display text, every prior
// follow-up pair, and the originally retrieved context. No fresh retrieval
// runs; follow-up answers stay anchored to the grounding the Solution cited.
func SynthesizeFollowUp(
	ctx context.Context,
	generator driven.GeneratorService,
	record *domain.ConversationRecord,
	question string,
	cfg SynthesisConfig,
) (string, error) {
	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
	}

	raw, err := generator.Complete(ctx, driven.PromptRequest{
		System:      tutorSystemPrompt,
		User:        buildFollowUpPrompt(record, question),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: generation: %v", domain.ErrBackendTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	answer := strings.TrimSpace(raw)
	if answer == "" {
		return "", fmt.Errorf("%w: backend returned an empty follow-up answer", domain.ErrSynthesisFailure)
	}
	return answer, nil
}

// buildSolutionPrompt composes the user message: the question followed by
// retrieved passages, each tagged with its source so the model can cite it
func buildSolutionPrompt(canonicalText string, retrieved domain.RetrievedContext) string {
	var b strings.Builder
	b.WriteString(canonicalText)

	if !retrieved.Empty() {
		b.WriteString("\n\nRelevant Information:")
		for _, sp := range retrieved.Passages {
			fmt.Fprintf(&b, "\nContext %s: %s", sp.Passage.SourceTag(), sp.Passage.Text)
		}
	}
	return b.String()
}

func buildFollowUpPrompt(record *domain.ConversationRecord, question string) string {
	var b strings.Builder
	b.WriteString("You previously answered a problem. Use that context if provided and answer the follow-up question.\n")
	fmt.Fprintf(&b, "Follow-up Question: %s", question)

	fmt.Fprintf(&b, "\n\nOriginal Question: %s", record.Query.CanonicalText)
	fmt.Fprintf(&b, "\n\nPrevious solution summary:\n%s", record.Solution.DisplayText)

	for _, fu := range record.FollowUps {
		fmt.Fprintf(&b, "\n\nEarlier follow-up: %s\nEarlier answer: %s", fu.Question, fu.Answer)
	}

	if !record.Context.Empty() {
		b.WriteString("\n\nRelevant Information:")
		for _, sp := range record.Context.Passages {
			fmt.Fprintf(&b, "\nContext %s: %s", sp.Passage.SourceTag(), sp.Passage.Text)
		}
	}
	return b.String()
}

// confidence blends the structural score of the parsed solution with the
// quality of its grounding. Grounded answers scale the structural base by
// the mean retrieval score; ungrounded answers are capped at the ceiling.
func confidence(solution *domain.Solution, retrieved domain.RetrievedContext, ungroundedCeiling float64) float64 {
	base := StructuralConfidence(solution)

	if retrieved.Empty() {
		if base > ungroundedCeiling {
			return ungroundedCeiling
		}
		return base
	}
	return base * retrieved.MeanScore()
}
