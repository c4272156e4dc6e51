package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"drafted/internal/domain"
	"drafted/internal/http/handlers"
	"drafted/internal/http/httpapi"
	"drafted/internal/infra"
	"drafted/internal/jobstore"
	"drafted/internal/metrics"
	"drafted/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		logger.Fatal().Msg("api: JWT_SECRET is required")
	}

	ctx := context.Background()

	var jobs domain.JobStore
	var sessions domain.SessionStore
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: failed to connect database")
		}
		defer pool.Close()
		store := jobstore.NewPostgresStore(infra.NewSQLRunner(pool, logger))
		jobs = store
		sessions = store.Sessions()
	} else {
		logger.Warn().Msg("api: DATABASE_URL not set, using in-memory stores")
		store := jobstore.NewMemoryStore()
		jobs = store
		sessions = store.Sessions()
	}

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure storage")
	}

	app := &handlers.App{
		Jobs:      jobs,
		Sessions:  sessions,
		Blobs:     fileStore,
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
	}

	collector := metrics.NewCollector()
	router := httpapi.NewRouter(cfg, app, collector)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
