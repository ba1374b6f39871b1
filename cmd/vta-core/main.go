package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/adapters/driven/ai"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/adapters/driven/auth"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/adapters/driven/extract"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/adapters/driven/memory"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/adapters/driven/postgres"
	redisadapter "github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/adapters/driven/redis"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/adapters/driving/http"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/config"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/services"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/corpus"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/runtime"
)

var version = "dev"

func main() {
	// Get run mode from environment (RUN_MODE) or command line arg
	mode := getEnv("RUN_MODE", "serve")
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	// Local development convenience; a missing .env is not an error
	_ = godotenv.Load()

	cfg, err := config.Load(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("vta-core %s starting in %s mode", version, mode)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	switch mode {
	case "serve":
		runServe(ctx, cfg)
	case "ingest":
		runIngest(ctx, cfg)
	default:
		log.Fatalf("Unknown mode: %s (use: serve or ingest)", mode)
	}
}

// runIngest builds a corpus snapshot from the knowledge-base directory and
// persists it for serve mode
func runIngest(ctx context.Context, cfg *config.Config) {
	embedder, err := ai.NewEmbeddingService(embeddingConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}

	builder := corpus.NewBuilder(embedder, slog.Default())

	log.Printf("Building corpus from %s...", cfg.Corpus.Dir)
	snapshot, err := builder.BuildFromDir(ctx, cfg.Corpus.Dir)
	if err != nil {
		log.Fatalf("Corpus build failed: %v", err)
	}

	if err := corpus.Save(snapshot, embeddingModelID(cfg), cfg.Corpus.SnapshotPath); err != nil {
		log.Fatalf("Failed to persist snapshot: %v", err)
	}

	log.Printf("Corpus %s built: %d passages, %d dimensions -> %s",
		snapshot.Version(), snapshot.Size(), snapshot.Dimensions(), cfg.Corpus.SnapshotPath)
}

// runServe wires the full engine and serves the HTTP API
func runServe(ctx context.Context, cfg *config.Config) {
	// ===== Corpus snapshot =====
	log.Printf("Loading corpus snapshot from %s...", cfg.Corpus.SnapshotPath)
	snapshot, err := corpus.Load(cfg.Corpus.SnapshotPath, embeddingModelID(cfg))
	if err != nil {
		if errors.Is(err, domain.ErrCorpusIntegrity) {
			log.Fatalf("Corpus integrity check failed, rebuild with ingest mode: %v", err)
		}
		log.Fatalf("Failed to load corpus snapshot (run ingest mode first): %v", err)
	}
	holder := corpus.NewHolder(snapshot)
	log.Printf("Corpus %s loaded: %d passages", snapshot.Version(), snapshot.Size())

	// ===== PostgreSQL (optional, query history) =====
	var db *postgres.DB
	var historyStore driven.HistoryStore
	if cfg.Postgres.URL != "" {
		log.Println("Connecting to PostgreSQL...")
		dbConfig := postgres.DefaultConfig(cfg.Postgres.URL)
		dbConfig.MaxOpenConns = cfg.Postgres.MaxOpenConns
		dbConfig.MaxIdleConns = cfg.Postgres.MaxIdleConns
		db, err = postgres.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Initialize schema (idempotent)
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		historyStore = postgres.NewHistoryStore(db)
		log.Println("PostgreSQL connected, query history enabled")
	}

	// ===== Redis (optional, conversation state) =====
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Conversation store (Redis if available, otherwise in-process) =====
	var conversationStore driven.ConversationStore
	conversationBackend := "memory"
	if redisClient != nil {
		retention := time.Duration(cfg.Redis.RetentionHours) * time.Hour
		conversationStore = redisadapter.NewConversationStore(redisClient, retention)
		conversationBackend = "redis"
		log.Println("Using Redis conversation store")
	} else {
		conversationStore = memory.NewConversationStore()
		log.Println("Using in-process conversation store")
	}

	// ===== AI backends =====
	runtimeConfig := domain.NewRuntimeConfig(conversationBackend)
	runtimeServices := runtime.NewServices(runtimeConfig)

	embedder, err := ai.NewEmbeddingService(embeddingConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}
	if err := runtimeServices.ValidateAndSetEmbedding(ctx, embedder); err != nil {
		log.Printf("Warning: embedding backend unavailable: %v (grounding disabled)", err)
	}

	generator, err := ai.NewGeneratorService(ai.Config{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
	})
	if err != nil {
		log.Fatalf("Failed to create generator service: %v", err)
	}
	if err := runtimeServices.ValidateAndSetGenerator(ctx, generator); err != nil {
		log.Printf("Warning: generator backend unavailable: %v (synthesis will fail)", err)
	}

	// ===== Text extraction (audio and image modalities) =====
	var extractor driven.TextExtractor
	if cfg.AI.APIKey != "" && cfg.AI.VisionModel != "" {
		extractor, err = extract.New(extract.Config{
			APIKey:             cfg.AI.APIKey,
			BaseURL:            cfg.AI.BaseURL,
			TranscriptionModel: cfg.AI.TranscriptionModel,
			VisionModel:        cfg.AI.VisionModel,
		})
		if err != nil {
			log.Fatalf("Failed to create extractor: %v", err)
		}
	} else {
		log.Println("Extractor not configured, audio and image submissions will be rejected")
	}

	log.Printf("Runtime config: conversation_backend=%s, embedding=%t, generator=%t",
		runtimeConfig.ConversationBackend,
		runtimeConfig.EmbeddingAvailable(),
		runtimeConfig.GeneratorAvailable())

	// ===== Engine =====
	engine := services.NewEngine(
		services.NewNormalizer(extractor),
		holder,
		runtimeServices,
		conversationStore,
		historyStore,
		services.RetrievalConfig{
			TopK:           cfg.Engine.TopK,
			ScoreThreshold: cfg.Engine.ScoreThreshold,
			ContextBudget:  cfg.Engine.ContextBudget,
			RequestTimeout: time.Duration(cfg.Engine.RequestTimeoutSeconds) * time.Second,
		},
		services.SynthesisConfig{
			Temperature:       cfg.Engine.Temperature,
			MaxTokens:         cfg.Engine.MaxTokens,
			UngroundedCeiling: cfg.Engine.UngroundedCeiling,
			RequestTimeout:    time.Duration(cfg.Engine.RequestTimeoutSeconds) * time.Second,
		},
		slog.Default(),
	)

	// ===== HTTP server =====
	var authMiddleware *http.AuthMiddleware
	if cfg.Auth.Enabled {
		authMiddleware = http.NewAuthMiddleware(auth.NewAdapter(cfg.Auth.JWTSecret))
		log.Println("Bearer-token authentication enabled")
	}

	var dbPinger http.Pinger
	if db != nil {
		dbPinger = db
	}
	var redisPing http.Pinger
	if redisClient != nil {
		redisPing = redisPinger{client: redisClient}
	}

	server := http.NewServer(
		http.Config{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			Version:        version,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		},
		engine,
		holder,
		authMiddleware,
		dbPinger,
		redisPing,
	)

	log.Printf("API server starting on :%d", cfg.Server.Port)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// redisPinger adapts the redis client to the health check interface
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func embeddingConfig(cfg *config.Config) ai.Config {
	return ai.Config{
		Provider:            cfg.AI.EmbeddingProvider,
		APIKey:              cfg.AI.APIKey,
		BaseURL:             cfg.AI.BaseURL,
		EmbeddingModel:      cfg.AI.EmbeddingModel,
		EmbeddingDimensions: cfg.AI.EmbeddingDimensions,
		SimulationSeed:      cfg.AI.SimulationSeed,
	}
}

// embeddingModelID names the embedding configuration a snapshot was built
// with, so serve mode refuses snapshots built with a different one
func embeddingModelID(cfg *config.Config) string {
	if cfg.AI.EmbeddingProvider == "simulated" {
		return "simulated"
	}
	if cfg.AI.EmbeddingModel != "" {
		return cfg.AI.EmbeddingModel
	}
	return "text-embedding-3-small"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
