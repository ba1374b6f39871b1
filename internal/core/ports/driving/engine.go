package driving

import (
	"context"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
)

// SubmitRequest is a primary question submission in any modality
type SubmitRequest struct {
	// Input is the tagged modality payload
	Input domain.Input

	// SubjectHint optionally pins retrieval to one subject. Used verbatim
	// when set; otherwise the engine auto-detects best-effort.
	SubjectHint string

	// AllowUngrounded permits a best-effort answer when the embedding
	// collaborator fails. Without it an embedding failure aborts the request.
	AllowUngrounded bool
}

// SubmitResult is the committed outcome of a submission
type SubmitResult struct {
	QueryID  string                  `json:"query_id"`
	Query    domain.Query            `json:"query"`
	Solution *domain.Solution        `json:"solution"`
	Context  domain.RetrievedContext `json:"context_used"`
}

// Engine is the retrieval-augmented query resolution engine exposed to the
// transport layer. All methods are safe for concurrent use; follow-ups for
// one query id are serialized, follow-ups for different ids proceed
// independently.
type Engine interface {
	// Submit normalizes the input, retrieves grounding context, synthesizes
	// a structured Solution, and commits a conversation record. Either a
	// full Solution is committed or nothing is.
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)

	// FollowUp answers a follow-up question with full prior context and
	// appends the pair to the conversation record.
	// Fails with domain.ErrUnknownQuery when no record exists for the id.
	FollowUp(ctx context.Context, queryID, question string) (string, error)

	// RenderAudioText returns the stored display text for TTS collaborators.
	// Fails with domain.ErrUnknownQuery when no record exists for the id.
	RenderAudioText(ctx context.Context, queryID string) (string, error)
}
