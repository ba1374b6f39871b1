package mocks

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// MockEmbeddingService is a deterministic EmbeddingService for testing.
// It hashes words into a fixed-size bag-of-words vector, so texts sharing
// vocabulary land close together in the vector space - enough for retrieval
// tests to behave like the real thing.
type MockEmbeddingService struct {
	dimensions int
	model      string
	FailNext   bool
	Calls      int
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{
		dimensions: 64,
		model:      "mock-embedding-model",
	}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.FailNext {
		m.FailNext = false
		return nil, context.DeadlineExceeded
	}
	m.Calls++

	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.generateEmbedding(text)
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if m.FailNext {
		m.FailNext = false
		return nil, context.DeadlineExceeded
	}
	m.Calls++
	return m.generateEmbedding(query), nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbeddingService) Model() string {
	return m.model
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbeddingService) Close() error {
	return nil
}

// generateEmbedding builds an L2-normalized bag-of-words vector
func (m *MockEmbeddingService) generateEmbedding(text string) []float32 {
	vec := make([]float32, m.dimensions)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%uint32(m.dimensions)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
