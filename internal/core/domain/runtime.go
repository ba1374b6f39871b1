package domain

import "sync"

// RuntimeConfig tracks which collaborator services are available.
// Determined at startup and updated when AI services are reconfigured.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	ConversationBackend string // "redis" or "memory"

	// Dynamic capability flags
	embeddingAvailable bool
	generatorAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(conversationBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		ConversationBackend: conversationBackend,
	}
}

// EmbeddingAvailable returns whether the embedding collaborator is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// GeneratorAvailable returns whether the generative backend is available
func (c *RuntimeConfig) GeneratorAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generatorAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetGeneratorAvailable updates the generator availability flag
func (c *RuntimeConfig) SetGeneratorAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generatorAvailable = available
}

// CanGround returns true if retrieval-grounded answers are possible
func (c *RuntimeConfig) CanGround() bool {
	return c.EmbeddingAvailable()
}

// CanSynthesize returns true if solution synthesis is possible
func (c *RuntimeConfig) CanSynthesize() bool {
	return c.GeneratorAvailable()
}
