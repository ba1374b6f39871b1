// Package config loads engine configuration from an optional YAML file
// with environment variable overrides. Every field has a working default
// so the binary starts with no configuration at all.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// EngineConfig holds retrieval and synthesis tuning
type EngineConfig struct {
	TopK              int     `yaml:"top_k"`
	ScoreThreshold    float64 `yaml:"score_threshold"`
	ContextBudget     int     `yaml:"context_budget"`
	Temperature       float32 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	UngroundedCeiling float64 `yaml:"ungrounded_ceiling"`

	// RequestTimeoutSeconds bounds each call to the embedding and
	// generation backends
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// CorpusConfig holds knowledge-base locations
type CorpusConfig struct {
	// Dir is the knowledge-base source directory used by ingest mode
	Dir string `yaml:"dir"`

	// SnapshotPath is where the built snapshot is persisted and loaded from
	SnapshotPath string `yaml:"snapshot_path"`
}

// AIConfig holds backend provider settings
type AIConfig struct {
	Provider            string `yaml:"provider"`
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	EmbeddingProvider   string `yaml:"embedding_provider"`
	EmbeddingModel      string `yaml:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`
	SimulationSeed      uint64 `yaml:"simulation_seed"`
	TranscriptionModel  string `yaml:"transcription_model"`
	VisionModel         string `yaml:"vision_model"`
}

// RedisConfig holds conversation state settings. An empty URL selects the
// in-process store.
type RedisConfig struct {
	URL            string `yaml:"url"`
	RetentionHours int    `yaml:"retention_hours"`
}

// PostgresConfig holds query-history settings. An empty URL disables
// history persistence.
type PostgresConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// AuthConfig holds bearer-token settings. Disabled by default so local
// development needs no token minting.
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Config is the full application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	AI       AIConfig       `yaml:"ai"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Auth     AuthConfig     `yaml:"auth"`
}

// Default returns the configuration used when nothing is specified
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Engine: EngineConfig{
			TopK:                  5,
			ScoreThreshold:        0.55,
			ContextBudget:         6000,
			Temperature:           0.7,
			MaxTokens:             2048,
			UngroundedCeiling:     0.40,
			RequestTimeoutSeconds: 60,
		},
		Corpus: CorpusConfig{
			Dir:          "knowledge_base",
			SnapshotPath: "data/corpus.json",
		},
		AI: AIConfig{
			Provider:          "groq",
			EmbeddingProvider: "simulated",
		},
		Redis: RedisConfig{
			RetentionHours: 24,
		},
		Postgres: PostgresConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Auth: AuthConfig{
			JWTSecret: "development-secret-change-in-production",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist), applies environment overrides, and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays environment variables onto the loaded configuration
func (c *Config) applyEnv() {
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Port = getEnvInt("PORT", c.Server.Port)

	c.Corpus.Dir = getEnv("CORPUS_DIR", c.Corpus.Dir)
	c.Corpus.SnapshotPath = getEnv("CORPUS_SNAPSHOT", c.Corpus.SnapshotPath)

	c.AI.Provider = getEnv("AI_PROVIDER", c.AI.Provider)
	c.AI.APIKey = getEnv("GROQ_API_KEY", c.AI.APIKey)
	c.AI.APIKey = getEnv("AI_API_KEY", c.AI.APIKey)
	c.AI.BaseURL = getEnv("AI_BASE_URL", c.AI.BaseURL)
	c.AI.Model = getEnv("AI_MODEL", c.AI.Model)
	c.AI.EmbeddingProvider = getEnv("EMBEDDING_PROVIDER", c.AI.EmbeddingProvider)
	c.AI.EmbeddingModel = getEnv("EMBEDDING_MODEL", c.AI.EmbeddingModel)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Postgres.URL = getEnv("DATABASE_URL", c.Postgres.URL)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.Enabled = getEnvBool("AUTH_ENABLED", c.Auth.Enabled)
}

// Validate rejects configurations the engine refuses to start with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Engine.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1, got %d", c.Engine.TopK)
	}
	if c.Engine.ScoreThreshold < 0 || c.Engine.ScoreThreshold > 1 {
		return fmt.Errorf("score_threshold must be in [0,1], got %g", c.Engine.ScoreThreshold)
	}
	if c.Engine.ContextBudget < 1 {
		return fmt.Errorf("context_budget must be positive, got %d", c.Engine.ContextBudget)
	}
	if c.Engine.UngroundedCeiling < 0 || c.Engine.UngroundedCeiling > 1 {
		return fmt.Errorf("ungrounded_ceiling must be in [0,1], got %g", c.Engine.UngroundedCeiling)
	}
	if c.Engine.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.Engine.RequestTimeoutSeconds)
	}
	switch c.AI.Provider {
	case "groq", "openai":
	default:
		return fmt.Errorf("unknown ai provider: %s", c.AI.Provider)
	}
	switch c.AI.EmbeddingProvider {
	case "groq", "openai", "simulated":
	default:
		return fmt.Errorf("unknown embedding provider: %s", c.AI.EmbeddingProvider)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
