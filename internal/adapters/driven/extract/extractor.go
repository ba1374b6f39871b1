// Package extract adapts the speech-to-text and image-text collaborators
// behind the TextExtractor port. Both ride the same OpenAI-compatible API:
// Whisper for transcription, a vision-capable chat model for reading
// problem text out of photographs.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure Extractor implements TextExtractor
var _ driven.TextExtractor = (*Extractor)(nil)

const (
	defaultTranscriptionModel = "whisper-large-v3"

	// ocrPrompt asks the vision model for a faithful transcription rather
	// than a solution; solving is the engine's job
	ocrPrompt = "Read the problem statement in this image and transcribe it exactly as written, " +
		"including all mathematical notation. Output only the transcribed text, nothing else."
)

// Extractor converts audio and image payloads into text
type Extractor struct {
	client             *openai.Client
	transcriptionModel string
	visionModel        string
}

// Config parameterizes the extraction backends
type Config struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	VisionModel        string // vision-capable chat model for OCR
}

// New creates an Extractor. VisionModel is required for image extraction;
// TranscriptionModel defaults to Whisper.
func New(cfg Config) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("extractor API key is required")
	}
	if cfg.VisionModel == "" {
		return nil, fmt.Errorf("extractor vision model is required")
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = defaultTranscriptionModel
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	// The default client has no timeout; a stalled backend must fail, not hang
	config.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &Extractor{
		client:             openai.NewClientWithConfig(config),
		transcriptionModel: cfg.TranscriptionModel,
		visionModel:        cfg.VisionModel,
	}, nil
}

// ExtractAudio transcribes recorded speech
func (e *Extractor) ExtractAudio(ctx context.Context, audio []byte, format string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio payload", domain.ErrInvalidInput)
	}
	if format == "" {
		format = "wav"
	}

	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.transcriptionModel,
		FilePath: "question." + format,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", wrapExtractErr("transcription", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// ExtractImage reads the problem text out of a photographed or handwritten page
func (e *Extractor) ExtractImage(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image payload", domain.ErrInvalidInput)
	}

	encoded := base64.StdEncoding.EncodeToString(image)
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: ocrPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + encoded,
						},
					},
				},
			},
		},
		Temperature: 0,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", wrapExtractErr("image extraction", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: image extraction returned no choices", domain.ErrExtraction)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func wrapExtractErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", domain.ErrBackendTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrExtraction, op, err)
}
