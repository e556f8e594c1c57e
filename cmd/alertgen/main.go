package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/climate-alert-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/climate-alert-service/internal/adapter/openweather"
	"github.com/couchcryptid/climate-alert-service/internal/adapter/postgres"
	smtpadapter "github.com/couchcryptid/climate-alert-service/internal/adapter/smtp"
	"github.com/couchcryptid/climate-alert-service/internal/config"
	"github.com/couchcryptid/climate-alert-service/internal/engine"
	"github.com/couchcryptid/climate-alert-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	provider := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.WeatherTimeout, logger)
	notifier := smtpadapter.NewNotifier(cfg.SMTP, logger)
	if !cfg.SMTP.Configured() {
		logger.Info("smtp delivery disabled, digests will be logged only")
	}

	// Alert event fan-out is feature-flagged via KAFKA_BROKERS.
	var publisher engine.AlertPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger)
		publisher = kafkaPublisher
		logger.Info("kafka alert publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka alert publishing disabled")
	}

	eng := engine.New(provider, store, notifier, publisher, logger, metrics)

	scheduler, err := engine.NewScheduler(eng, cfg.CronSchedule, cfg.RunTimeout, logger)
	if err != nil {
		logger.Error("invalid cron schedule", "schedule", cfg.CronSchedule, "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, eng, cfg.RunTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start scheduled runs.
	scheduler.Start()
	logger.Info("alert generation scheduled", "schedule", cfg.CronSchedule)

	<-ctx.Done()
	logger.Info("shutting down")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("shutdown complete")
}
