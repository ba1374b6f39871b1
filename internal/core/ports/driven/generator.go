package driven

import (
	"context"
)

// PromptRequest is one request to the generative backend. Image carries the
// optional visual payload for image-origin queries; when set, backends must
// attach it alongside the user text.
type PromptRequest struct {
	System      string
	User        string
	Image       []byte // JPEG/PNG bytes, optional
	Temperature float32
	MaxTokens   int
}

// GeneratorService is the generative backend producing raw solution text.
// Responses may be non-deterministic; parsing them into structure is the
// synthesizer's job, not the backend's.
type GeneratorService interface {
	// Complete sends the prompt and returns the raw response text
	Complete(ctx context.Context, req PromptRequest) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the generative backend is available
	Ping(ctx context.Context) error

	// Close releases resources held by the backend client
	Close() error
}
