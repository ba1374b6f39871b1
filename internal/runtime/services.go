package runtime

import (
	"context"
	"sync"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Services holds references to dynamically configurable AI services.
// The embedding and generator backends can be swapped at runtime (for
// example when credentials are rotated or a provider is changed).
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic services (can be nil, updated at runtime)
	embeddingService driven.EmbeddingService
	generatorService driven.GeneratorService
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// GeneratorService returns the current generator service (may be nil)
func (s *Services) GeneratorService() driven.GeneratorService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generatorService
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetGeneratorService updates the generator service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetGeneratorService(svc driven.GeneratorService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generatorService != nil {
		_ = s.generatorService.Close()
	}

	s.generatorService = svc
	s.config.SetGeneratorAvailable(svc != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.generatorService != nil {
		_ = s.generatorService.Close()
		s.generatorService = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetGeneratorAvailable(false)

	return nil
}

// ValidateAndSetEmbedding validates connectivity before setting the embedding service
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetGenerator validates connectivity before setting the generator service
func (s *Services) ValidateAndSetGenerator(ctx context.Context, svc driven.GeneratorService) error {
	if svc == nil {
		s.SetGeneratorService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetGeneratorService(svc)
	return nil
}
