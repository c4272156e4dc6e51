package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"drafted/internal/domain"
	"drafted/internal/infra"
	"drafted/internal/jobstore"
	"drafted/internal/metrics"
	"drafted/internal/pipeline"
	"drafted/internal/providers/genai"
	"drafted/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store domain.JobStore
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: db connection failed")
		}
		defer pool.Close()
		store = jobstore.NewPostgresStore(infra.NewSQLRunner(pool, logger))
	} else {
		logger.Warn().Msg("worker: DATABASE_URL not set, using in-memory job store")
		store = jobstore.NewMemoryStore()
	}

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	geminiClient := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		TextModel:  cfg.GeminiTextModel,
		ImageModel: cfg.GeminiImageModel,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     &logger,
	})
	if !geminiClient.Configured() {
		logger.Warn().Msg("worker: gemini api key missing, specs will use the deterministic fallback")
	}

	collector := metrics.NewCollector()
	go serveMetrics(ctx, cfg, collector, logger)

	runner := pipeline.NewRunner(pipeline.Options{
		Store:      store,
		Blobs:      fileStore,
		Generator:  geminiClient,
		Logger:     logger,
		Collector:  collector,
		MaxRetries: cfg.JobMaxRetries,
	})

	logger.Info().Dur("poll_interval", cfg.JobPollInterval).Msg("worker: started")
	if err := runLoop(ctx, store, runner, cfg.JobPollInterval, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

// runLoop polls for claimable jobs and hands each to the pipeline.
// ProcessQueuedJob handles contention internally, so overlapping workers
// are safe.
func runLoop(ctx context.Context, store domain.JobStore, runner *pipeline.Runner, pollInterval time.Duration, logger infra.Logger) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		ids, err := store.NextQueued(ctx, 10)
		if err != nil {
			logger.Error().Err(err).Msg("worker: failed to poll queue")
			continue
		}
		for _, id := range ids {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			runner.ProcessQueuedJob(ctx, id)
		}
	}
}

func serveMetrics(ctx context.Context, cfg *infra.Config, collector *metrics.Collector, logger infra.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("worker: metrics server failed")
	}
}
