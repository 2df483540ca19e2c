// Package server wires configuration into sources, services and the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"docmatch/internal/api"
	"docmatch/internal/api/handlers"
	"docmatch/internal/auth"
	"docmatch/internal/config"
	"docmatch/internal/db"
	"docmatch/internal/health"
	"docmatch/internal/logger"
	"docmatch/internal/repository"
	"docmatch/internal/scheduler"
	"docmatch/internal/service"
	"docmatch/internal/source"
	"docmatch/internal/source/filesystem"
	"docmatch/internal/source/storage"

	"github.com/gin-gonic/gin"
)

// NewSourceRegistry registers the filesystem source and, when credentials
// are configured, the remote storage source.
func NewSourceRegistry(ctx context.Context, cfg *config.Config) *source.Registry {
	registry := source.NewRegistry(filesystem.New(filesystem.Config{
		Extensions:  cfg.Matching.Extensions,
		MaxFileSize: cfg.Matching.MaxFileSize,
	}))

	if cfg.Storage.Configured() {
		registry.Register(storage.New(ctx, storage.Config{
			URL:         cfg.Storage.URL,
			Key:         cfg.Storage.Key,
			Bucket:      cfg.Storage.Bucket,
			PageSize:    cfg.Storage.PageSize,
			Timeout:     cfg.Storage.Timeout,
			Extensions:  cfg.Matching.Extensions,
			MaxFileSize: cfg.Matching.MaxFileSize,
		}))
		logger.Info().Str("bucket", cfg.Storage.Bucket).Msg("storage source registered")
	} else if cfg.Storage.URL != "" || cfg.Storage.Key != "" {
		logger.Warn().Msg("storage source disabled: STORAGE_URL and STORAGE_KEY must both be set")
	} else {
		logger.Info().Msg("storage source not configured (STORAGE_URL and STORAGE_KEY required)")
	}

	return registry
}

// App holds the long-lived components of the server.
type App struct {
	Config       *config.Config
	Database     *db.Database
	Runs         *repository.RunRepository
	MatchService *service.MatchService
	Scheduler    *scheduler.Scheduler
}

// NewApp connects optional dependencies and builds the services.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	var recorder service.RunRecorder
	if cfg.Database.HistoryEnabled() {
		logger.Info().Msg("running database migrations")
		if err := db.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return nil, err
		}

		database, err := db.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("database connected successfully")

		app.Database = database
		app.Runs = repository.NewRunRepository(database)
		recorder = app.Runs
	} else {
		logger.Info().Msg("run history disabled (DATABASE_URL not set)")
	}

	registry := NewSourceRegistry(ctx, cfg)
	app.MatchService = service.NewMatchService(
		registry,
		recorder,
		service.MatchOptionsFromConfig(cfg.Matching, filesystem.Name),
	)
	app.Scheduler = scheduler.NewScheduler(app.MatchService, cfg.Schedule)

	return app, nil
}

// Close releases the database pool.
func (a *App) Close() {
	if a.Database != nil {
		a.Database.Close()
	}
}

// Router builds the gin engine with all routes.
func (a *App) Router() *gin.Engine {
	var pinger health.Pinger
	if a.Database != nil {
		pinger = a.Database
	}

	var runs handlers.RunStore
	if a.Runs != nil {
		runs = a.Runs
	}

	return NewRouter(a.Config, a.MatchService, runs, pinger)
}

// NewRouter registers middleware and routes. runs and db may be nil.
func NewRouter(cfg *config.Config, matches handlers.MatchRunner, runs handlers.RunStore, pinger health.Pinger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.RequestIDMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.CORSMiddleware(cfg.CORS))
	router.Use(api.RecoveryMiddleware())

	healthChecker := health.NewHealthChecker(pinger, cfg.Database.HealthTimeout)
	router.GET("/health", healthChecker.Handler)

	matchHandler := handlers.NewMatchHandler(matches)

	v1 := router.Group("/api/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.External))
	{
		v1.POST("/matches", matchHandler.CreateMatch)
		v1.GET("/sources", matchHandler.ListSources)

		// Run history routes (only with a database)
		if runs != nil {
			runHandler := handlers.NewRunHandler(runs)
			v1.GET("/runs", runHandler.ListRuns)
			v1.GET("/runs/:id", runHandler.GetRun)
		}
	}

	return router
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer app.Scheduler.Stop()
	for _, job := range app.Scheduler.GetScheduledJobs() {
		logger.Info().
			Time("next_run", job.Schedule.Next(time.Now())).
			Msg("scheduled match registered")
	}

	addr := cfg.GetBindAddress()
	// A listener lets us report the selected port when PORT=0
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	srv := &http.Server{
		Addr:    ln.Addr().String(),
		Handler: app.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("starting server")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server exited")
	return nil
}
