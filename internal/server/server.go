package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rezforge/launchpad/backend/internal/collection"
	"github.com/rezforge/launchpad/backend/internal/config"
	"github.com/rezforge/launchpad/backend/internal/http"
	"github.com/rezforge/launchpad/backend/internal/logging"
	"github.com/rezforge/launchpad/backend/internal/middleware"
	"github.com/rezforge/launchpad/backend/internal/monitoring"
	"github.com/rezforge/launchpad/backend/internal/rez"
	"github.com/rezforge/launchpad/backend/internal/stage"
	"github.com/rezforge/launchpad/backend/internal/storage"
	"github.com/rezforge/launchpad/backend/internal/ws"
)

// Server wraps the HTTP surface and its dependencies
type Server struct {
	router  *gin.Engine
	gateway storage.Gateway
	logger  *logging.Logger
}

// NewServer wires the whole backend: logger, storage gateway (probed
// before it is accepted), resolver pipeline, managers, routes. The
// gateway is constructed once here and injected everywhere; nothing
// initializes storage lazily.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = logging.DefaultLogPath()
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		File:        logFile,
	})
	if err != nil {
		return nil, err
	}

	gateway, err := connectStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()
	hub := ws.NewHub(logger).WithMetrics(metrics)

	pool := rez.NewPool(cfg.Resolver.Workers)
	generator := rez.NewGenerator(cfg.Resolver.Bin, pool, logger)
	loader := rez.NewLoader(cfg.Resolver.Bin, pool, logger)

	stages := stage.NewManager(gateway, generator, loader, logger).
		WithMetrics(metrics).
		WithPublisher(hub)
	collections := collection.NewManager(gateway, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(stages, collections)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Package collections
	router.POST("/collections", handlers.SaveCollection)
	router.GET("/collections", handlers.ListCollections)
	router.GET("/collections/tools", handlers.CollectionTools)

	// Stage lifecycle
	router.POST("/stages", handlers.SaveStage)
	router.GET("/stages", handlers.ListStages)
	router.GET("/stages/names", handlers.StageNames)
	router.GET("/stages/history", handlers.StageHistory)
	router.POST("/stages/:id/revert", handlers.RevertStage)
	router.POST("/stages/:id/load", handlers.LoadStage)

	// Lifecycle event stream
	router.GET("/stream", hub.HandleConnection)

	return &Server{
		router:  router,
		gateway: gateway,
		logger:  logger,
	}, nil
}

// connectStorage probes and opens the configured document store. The
// literal URI "memory" selects the in-process gateway for storage-less
// development runs.
func connectStorage(ctx context.Context, cfg *config.Config, logger *logging.Logger) (storage.Gateway, error) {
	if cfg.Storage.URI == "memory" {
		logger.Warn("Using in-memory storage; records will not survive restarts")
		return storage.NewMemory(), nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
	defer cancel()
	return storage.Connect(probeCtx, cfg.Storage.URI, cfg.Storage.Database, logger)
}

// Run starts the server
func (s *Server) Run(addr string) error {
	s.logger.Info("Starting launcher backend", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close cleans up resources
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.gateway.Close(ctx); err != nil {
		s.logger.Error("Error closing storage gateway", zap.Error(err))
		return err
	}
	_ = s.logger.Sync()
	return nil
}
