package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	engine driving.Engine
	corpus driven.CorpusProvider

	// Middleware; nil disables bearer-token auth entirely
	auth *AuthMiddleware

	// Infrastructure
	db          Pinger // PostgreSQL health check (optional)
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	engine driving.Engine,
	corpus driven.CorpusProvider,
	auth *AuthMiddleware, // can be nil
	db Pinger, // can be nil
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:      http.NewServeMux(),
		version:     cfg.Version,
		engine:      engine,
		corpus:      corpus,
		auth:        auth,
		db:          db,
		redisClient: redisClient,
	}

	handler := http.Handler(s.router)
	if len(cfg.AllowedOrigins) > 0 {
		handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	}
	handler = NewLoggingMiddleware().Handler(handler)
	handler = NewRecoveryMiddleware().Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // synthesis calls can run long
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Query resolution endpoints
	s.router.Handle("POST /api/v1/query",
		s.protect(http.HandlerFunc(s.handleSubmitQuery)))
	s.router.Handle("POST /api/v1/query/{id}/followup",
		s.protect(http.HandlerFunc(s.handleFollowUp)))
	s.router.Handle("GET /api/v1/query/{id}/audio",
		s.protect(http.HandlerFunc(s.handleAudioText)))

	// Corpus introspection
	s.router.Handle("GET /api/v1/corpus",
		s.protect(http.HandlerFunc(s.handleCorpusStats)))
}

// protect wraps a handler with bearer-token authentication when configured
func (s *Server) protect(next http.Handler) http.Handler {
	if s.auth == nil {
		return next
	}
	return s.auth.Authenticate(next)
}

// Start serves requests until ctx is cancelled, then shuts down gracefully.
// Signal handling belongs to the caller; the serve path has one shutdown
// owner.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
