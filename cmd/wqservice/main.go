package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/water-quality-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/water-quality-service/internal/adapter/kafka"
	"github.com/couchcryptid/water-quality-service/internal/config"
	"github.com/couchcryptid/water-quality-service/internal/domain"
	"github.com/couchcryptid/water-quality-service/internal/observability"
	"github.com/couchcryptid/water-quality-service/internal/pipeline"
	"github.com/couchcryptid/water-quality-service/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	scorer, err := domain.NewScorer(domain.Normalization(cfg.ScoreNormalization))
	if err != nil {
		logger.Error("invalid scorer configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("scorer configured", "normalization", scorer.Normalization())

	// Results feed (feature-flagged via KAFKA_ENABLED).
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("results feed enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaResultsTopic)
	} else {
		logger.Info("results feed disabled")
	}

	p := pipeline.New(scorer, publisher, logger, metrics)
	sessions := session.NewStore(cfg.SessionTTL, nil, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Dependencies{
		Ready:    p,
		Pipeline: p,
		Sessions: sessions,
		Metrics:  metrics,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Evict idle sessions.
	go sessions.Run(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete", "sessions_discarded", sessions.Count())
}
