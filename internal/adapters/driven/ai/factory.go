// Package ai provides the OpenAI-compatible adapters for the embedding and
// generative backends. Groq exposes the same wire API, so one client serves
// both providers with different base URLs.
package ai

import (
	"fmt"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

const (
	// GroqBaseURL is the OpenAI-compatible endpoint Groq serves
	GroqBaseURL = "https://api.groq.com/openai/v1"

	defaultGroqModel      = "meta-llama/llama-4-scout-17b-16e-instruct"
	defaultEmbeddingModel = "text-embedding-3-small"
)

// Config selects and parameterizes the AI backends
type Config struct {
	Provider string // groq | openai | simulated
	APIKey   string
	BaseURL  string // optional override

	Model          string // generator model
	EmbeddingModel string

	// Simulated embedding parameters, used when Provider is "simulated"
	EmbeddingDimensions int
	SimulationSeed      uint64
}

// NewGeneratorService creates the generative backend for the configured provider
func NewGeneratorService(cfg Config) (driven.GeneratorService, error) {
	switch cfg.Provider {
	case "groq":
		model := cfg.Model
		if model == "" {
			model = defaultGroqModel
		}
		return newOpenAIGenerator(cfg.APIKey, model, baseURL(cfg, GroqBaseURL))
	case "openai":
		return newOpenAIGenerator(cfg.APIKey, cfg.Model, baseURL(cfg, ""))
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, cfg.Provider)
	}
}

// NewEmbeddingService creates the embedding backend for the configured
// provider. The simulated provider needs no credentials and is intended for
// local development and offline corpus builds.
func NewEmbeddingService(cfg Config) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "openai", "groq":
		model := cfg.EmbeddingModel
		if model == "" {
			model = defaultEmbeddingModel
		}
		return newOpenAIEmbedding(cfg.APIKey, model, baseURL(cfg, ""))
	case "simulated":
		return NewSimulatedEmbedding(cfg.EmbeddingDimensions, cfg.SimulationSeed), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, cfg.Provider)
	}
}

func baseURL(cfg Config, fallback string) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return fallback
}
