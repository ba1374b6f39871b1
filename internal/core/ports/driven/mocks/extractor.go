package mocks

import (
	"context"
)

// MockTextExtractor is a scripted TextExtractor for testing
type MockTextExtractor struct {
	Transcript string
	ImageText  string
	Err        error
}

// NewMockTextExtractor creates a new MockTextExtractor
func NewMockTextExtractor() *MockTextExtractor {
	return &MockTextExtractor{}
}

func (m *MockTextExtractor) ExtractAudio(ctx context.Context, audio []byte, format string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Transcript, nil
}

func (m *MockTextExtractor) ExtractImage(ctx context.Context, image []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.ImageText, nil
}
