package ai

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure SimulatedEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*SimulatedEmbedding)(nil)

const (
	defaultSimulatedDimensions = 256
	defaultSimulationSeed      = 42
)

// SimulatedEmbedding generates deterministic embeddings without external API
// calls: the text's SHA-256 digest seeds a PRNG that draws a normal vector,
// which is then L2-normalized. Identical text always yields the same vector,
// so corpus builds and query embeddings stay consistent across processes.
type SimulatedEmbedding struct {
	dimensions int
	seed       uint64
}

// NewSimulatedEmbedding creates a simulated embedding service. Zero values
// fall back to the standard dimension and seed.
func NewSimulatedEmbedding(dimensions int, seed uint64) *SimulatedEmbedding {
	if dimensions <= 0 {
		dimensions = defaultSimulatedDimensions
	}
	if seed == 0 {
		seed = defaultSimulationSeed
	}
	return &SimulatedEmbedding{dimensions: dimensions, seed: seed}
}

func (s *SimulatedEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = s.generate(text)
	}
	return embeddings, nil
}

func (s *SimulatedEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.generate(query), nil
}

func (s *SimulatedEmbedding) Dimensions() int {
	return s.dimensions
}

func (s *SimulatedEmbedding) Model() string {
	return "simulated"
}

func (s *SimulatedEmbedding) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *SimulatedEmbedding) Close() error {
	return nil
}

func (s *SimulatedEmbedding) generate(text string) []float32 {
	digest := sha256.Sum256([]byte(text))
	seed := binary.BigEndian.Uint64(digest[:8]) ^ s.seed
	rng := rand.New(rand.NewSource(int64(seed)))

	vector := make([]float32, s.dimensions)
	var norm float64
	for i := range vector {
		v := rng.NormFloat64()
		vector[i] = float32(v)
		norm += v * v
	}

	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= inv
		}
	}
	return vector
}
