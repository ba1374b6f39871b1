package driven

import (
	"context"
)

// TextExtractor converts non-text payloads into text. Only the Query
// Normalizer consumes it; the engine never touches raw audio or pixels.
type TextExtractor interface {
	// ExtractAudio transcribes recorded speech. Format is the container
	// extension (wav, mp3, ogg, m4a, webm).
	ExtractAudio(ctx context.Context, audio []byte, format string) (string, error)

	// ExtractImage reads the problem text out of a photographed or
	// handwritten page
	ExtractImage(ctx context.Context, image []byte) (string, error)
}
