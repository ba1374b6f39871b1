package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure openAIEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*openAIEmbedding)(nil)

// Model dimensions for OpenAI embedding models
var embeddingModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// openAIEmbedding implements EmbeddingService against the OpenAI embeddings API
type openAIEmbedding struct {
	client     *openai.Client
	model      string
	dimensions int
}

func newOpenAIEmbedding(apiKey, model, baseURL string) (driven.EmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}

	dimensions, ok := embeddingModelDimensions[model]
	if !ok {
		dimensions = 1536
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	// The default client has no timeout; a stalled backend must fail, not hang
	config.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &openAIEmbedding{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Embed generates embeddings for multiple texts, in input order
func (e *openAIEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < len(embeddings) {
			embeddings[d.Index] = d.Embedding
		}
	}
	return embeddings, nil
}

// EmbedQuery generates an embedding for a search query
func (e *openAIEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	return embeddings[0], nil
}

// Dimensions returns the embedding dimension size
func (e *openAIEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *openAIEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the embedding service is available
func (e *openAIEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases resources held by the embedding service
func (e *openAIEmbedding) Close() error {
	return nil
}
