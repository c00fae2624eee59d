// Command swellcast runs the swell forecasting service: it consumes marine
// analysis text from Kafka, extracts storm systems, propagates them to the
// target coastline, and publishes arrival predictions to the sink topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/stonezone/surfcastai/internal/adapter/http"
	kafkaadapter "github.com/stonezone/surfcastai/internal/adapter/kafka"
	"github.com/stonezone/surfcastai/internal/config"
	"github.com/stonezone/surfcastai/internal/observability"
	"github.com/stonezone/surfcastai/internal/pipeline"
	"github.com/stonezone/surfcastai/internal/spectral"
	"github.com/stonezone/surfcastai/internal/stormtext"
)

func main() {
	// Missing .env is fine; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	extractor := stormtext.New(logger)
	transformer := pipeline.NewTransformer(extractor, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	decomposer := spectral.New(spectral.DefaultConfig(), logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, decomposer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start forecasting pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
