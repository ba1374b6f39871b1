package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuery indicates normalization produced no canonical text:
	// an empty typed question, a blank transcript, or OCR that extracted nothing
	ErrEmptyQuery = errors.New("empty query")

	// ErrUnknownQuery indicates no conversation record exists for the query id.
	// This is a caller misuse signal, never retried internally.
	ErrUnknownQuery = errors.New("unknown query id")

	// ErrSynthesisFailure indicates the generative backend responded but
	// produced no usable structured content
	ErrSynthesisFailure = errors.New("synthesis produced no usable content")

	// ErrEmbedding indicates the embedding collaborator failed
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the generative backend failed
	ErrGeneration = errors.New("generation failed")

	// ErrExtraction indicates the speech-to-text or OCR collaborator failed
	ErrExtraction = errors.New("text extraction failed")

	// ErrBackendTimeout indicates an external call exceeded its deadline.
	// Surfaced as retryable; retry policy belongs to the calling layer.
	ErrBackendTimeout = errors.New("backend timed out")

	// ErrUngroundedRefused indicates retrieval produced no usable grounding
	// and the caller required a grounded answer
	ErrUngroundedRefused = errors.New("no grounding available for query")

	// ErrCorpusIntegrity indicates the vector index and metadata do not match:
	// wrong embedding dimension, missing metadata rows, or version skew.
	// Fatal at startup; the engine must not serve queries over a broken corpus.
	ErrCorpusIntegrity = errors.New("corpus integrity violation")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")
)

// Transient reports whether an error represents a transient collaborator
// failure the caller may reasonably retry, as opposed to a permanent one
// such as a malformed backend response or caller misuse.
func Transient(err error) bool {
	return errors.Is(err, ErrBackendTimeout) || errors.Is(err, ErrServiceUnavailable)
}
