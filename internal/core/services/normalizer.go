package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Normalizer converts any input modality into one canonical query text plus
// a best-effort subject hint. It is the only component that touches raw
// audio or image bytes, and only by delegating to the TextExtractor.
type Normalizer struct {
	extractor driven.TextExtractor
}

// NewNormalizer creates a Normalizer backed by the given extractor.
// The extractor may be nil when only text submissions are expected; audio
// and image inputs then fail with ErrExtraction.
func NewNormalizer(extractor driven.TextExtractor) *Normalizer {
	return &Normalizer{extractor: extractor}
}

// Normalize produces the canonical text and subject for one submission.
// An explicit subjectHint is used verbatim; otherwise the subject is
// auto-detected from the canonical text, and left unset on ties or no
// signal so retrieval runs unfiltered.
func (n *Normalizer) Normalize(ctx context.Context, input domain.Input, subjectHint string) (string, domain.Subject, error) {
	if input == nil {
		return "", "", fmt.Errorf("%w: nil input", domain.ErrInvalidInput)
	}

	canonical, err := n.canonicalText(ctx, input)
	if err != nil {
		return "", "", err
	}
	if canonical == "" {
		return "", "", domain.ErrEmptyQuery
	}

	if subjectHint != "" {
		subject := domain.ParseSubject(subjectHint)
		if subject == "" {
			return "", "", fmt.Errorf("%w: unknown subject %q", domain.ErrInvalidInput, subjectHint)
		}
		return canonical, subject, nil
	}

	return canonical, domain.DetectSubject(canonical), nil
}

func (n *Normalizer) canonicalText(ctx context.Context, input domain.Input) (string, error) {
	switch in := input.(type) {
	case domain.TextInput:
		return strings.TrimSpace(in.Text), nil

	case domain.AudioInput:
		transcript, err := n.extract(func() (string, error) {
			return n.extractor.ExtractAudio(ctx, in.Audio, in.Format)
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(transcript), nil

	case domain.ImageInput:
		extracted, err := n.extract(func() (string, error) {
			return n.extractor.ExtractImage(ctx, in.Image)
		})
		if err != nil {
			return "", err
		}
		extracted = strings.TrimSpace(extracted)
		if userContext := strings.TrimSpace(in.Context); userContext != "" && extracted != "" {
			return extracted + "\n" + userContext, nil
		}
		return extracted, nil

	default:
		return "", fmt.Errorf("%w: unsupported modality %q", domain.ErrInvalidInput, input.Modality())
	}
}

func (n *Normalizer) extract(fn func() (string, error)) (string, error) {
	if n.extractor == nil {
		return "", fmt.Errorf("%w: no text extractor configured", domain.ErrExtraction)
	}
	text, err := fn()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", domain.ErrBackendTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	return text, nil
}
