// Package worker provides the HTTP worker service for topicforge.
package worker

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"

	"github.com/reviewlens/topicforge/internal/clustering"
	"github.com/reviewlens/topicforge/internal/config"
	gormstore "github.com/reviewlens/topicforge/internal/db/gorm"
	"github.com/reviewlens/topicforge/internal/embedding"
	"github.com/reviewlens/topicforge/internal/llm"
	"github.com/reviewlens/topicforge/internal/naming"
	"github.com/reviewlens/topicforge/internal/topics"
)

const (
	// ReadHeaderTimeout bounds how long a client may take to send headers.
	ReadHeaderTimeout = 10 * time.Second
)

// topicBuilder is the engine surface the HTTP handlers depend on.
type topicBuilder interface {
	Build(ctx context.Context, params topics.BuildParams) (*topics.BuildResult, error)
}

// Service is the worker service orchestrator.
type Service struct {
	version string
	config  *config.Config

	store  *gormstore.Store
	engine topicBuilder

	router    *chi.Mux
	server    *http.Server
	startTime time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Initialization state (for deferred init)
	ready     atomic.Bool
	initError error
	initMu    sync.RWMutex
}

// NewService creates a new worker service with deferred initialization.
// The health endpoint is available immediately; database and collaborator
// clients come up in the background.
func NewService(version string) (*Service, error) {
	cfg := config.Get()

	ctx, cancel := context.WithCancel(context.Background())

	svc := &Service{
		version:   version,
		config:    cfg,
		router:    chi.NewRouter(),
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}

	svc.setupMiddleware()
	svc.setupRoutes()

	go svc.initializeAsync()

	return svc, nil
}

// initializeAsync wires the database and collaborator clients in the
// background. Build requests 503 until this completes.
func (s *Service) initializeAsync() {
	log.Info().Msg("Starting async initialization...")

	if err := config.EnsureSettings(); err != nil {
		log.Warn().Err(err).Msg("Could not create default settings file")
	}

	store, err := gormstore.NewStore(gormstore.Config{
		DSN:        s.config.DatabaseDSN,
		MaxConns:   s.config.MaxConns,
		Dimensions: s.config.EmbeddingDimensions,
		LogLevel:   logger.Silent,
	})
	if err != nil {
		s.setInitError(fmt.Errorf("init database: %w", err))
		return
	}

	embedClient, err := embedding.NewClient(embedding.Config{
		BaseURL:    s.config.EmbeddingBaseURL,
		APIKey:     s.config.EmbeddingAPIKey,
		Model:      s.config.EmbeddingModel,
		Dimensions: s.config.EmbeddingDimensions,
	})
	if err != nil {
		s.setInitError(fmt.Errorf("init embedding client: %w", err))
		return
	}

	llmClient, err := llm.NewClient(llm.Config{
		BaseURL: s.config.LLMBaseURL,
		APIKey:  s.config.LLMAPIKey,
		Model:   s.config.LLMModel,
		Timeout: s.config.HTTPTimeout,
	})
	if err != nil {
		s.setInitError(fmt.Errorf("init LLM client: %w", err))
		return
	}

	engine := topics.NewEngine(
		gormstore.NewConceptStore(store),
		gormstore.NewTopicStore(store),
		clustering.NewLLMClusterer(llmClient),
		naming.NewLLMNamer(llmClient),
		embedClient,
		topics.Options{
			JaccardThreshold:   s.config.JaccardThreshold,
			HistMergeThreshold: s.config.HistMergeThreshold,
			NamingConcurrency:  s.config.NamingConcurrency,
		},
	)

	s.initMu.Lock()
	s.store = store
	s.engine = engine
	s.initMu.Unlock()

	s.ready.Store(true)
	log.Info().Msg("Async initialization complete - service ready")
}

func (s *Service) setupMiddleware() {
	s.router.Use(RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.config.HTTPTimeout))
	s.router.Use(middleware.RealIP)
}

// setupRoutes configures HTTP routes.
func (s *Service) setupRoutes() {
	// Health check returns 200 immediately so orchestrators can probe
	// during init. Use /ready for the full readiness check.
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireReady)
		r.Get("/topics/build", s.handleBuildTopics)
	})
}

func (s *Service) setInitError(err error) {
	s.initMu.Lock()
	s.initError = err
	s.initMu.Unlock()
	log.Error().Err(err).Msg("Async initialization failed")
}

// GetInitError returns the initialization error, if any.
func (s *Service) GetInitError() error {
	s.initMu.RLock()
	defer s.initMu.RUnlock()
	return s.initError
}

// Start starts the HTTP server. It returns immediately; initialization
// continues in the background.
func (s *Service) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.WorkerPort),
		Handler:           s.router,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	log.Info().
		Int("port", s.config.WorkerPort).
		Msg("Worker HTTP server started (initialization in progress)")

	return nil
}

// Shutdown gracefully stops the service.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}

	s.initMu.RLock()
	store := s.store
	s.initMu.RUnlock()
	if store != nil {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Database close error")
		}
	}

	s.wg.Wait()

	log.Info().Msg("Worker service shutdown complete")
	return nil
}
