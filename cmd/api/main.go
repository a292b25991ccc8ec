package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"innbook/internal/api"
	"innbook/internal/config"
	"innbook/internal/database"
	"innbook/internal/domain"
	"innbook/internal/events"
	"innbook/internal/export"
	"innbook/internal/logging"
	"innbook/internal/metrics"
	"innbook/internal/repository"
	"innbook/internal/service"
	"innbook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	redisClient, cache := initCache(ctx, cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	mailer := worker.NewSMTPMailer(cfg.SMTP)
	retryPolicy := worker.RetryPolicy{
		MaxRetries:    cfg.Notify.MaxRetries,
		InitialDelay:  time.Duration(cfg.Notify.PollIntervalSeconds) * time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2,
	}
	notifyWorker := worker.NewNotifyWorker(db, mailer, redisClient, retryPolicy, &logger)
	go notifyWorker.Start(ctx)

	eventBus := events.NewEventBus()
	subscribeReservationEvents(eventBus, &logger)

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	reservationService := service.NewReservationService(db, eventBus, notifyWorker, cache, cacheTTL, &logger)
	guestService := service.NewGuestService(db, cache, cacheTTL, &logger)
	unitService := service.NewUnitService(db, cache, cacheTTL, &logger)

	if err := unitService.SeedUnits(ctx, cfg.Units); err != nil {
		return fmt.Errorf("seed units: %w", err)
	}

	exporter := export.NewExporter(db, cfg.Exports.Path, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	apiServer := api.NewHTTPServer(cfg.API, reservationService, guestService, unitService, exporter, &logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("api server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api server shutdown error")
	}

	logger.Info().Msg("shutdown complete")
	return nil
}

// initCache wires the read-through cache: redis primary with an in-memory
// fallback when configured, plain in-memory otherwise.
func initCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.Cache) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	fallback := repository.NewMemoryCache()
	if cfg.Redis.Address == "" {
		return nil, fallback
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, memory cache will serve until it recovers")
	}

	return redisClient, repository.NewFailoverCache(repository.NewRedisCache(redisClient), fallback, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// subscribeReservationEvents attaches audit logging to the bus. Further
// consumers subscribe the same way.
func subscribeReservationEvents(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(ev *events.Event) error {
		var payload events.ReservationEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}

		logger.Info().
			Str("event", ev.Type).
			Str("event_id", ev.ID).
			Int64("reservation_id", payload.ReservationID).
			Str("unit", payload.UnitName).
			Str("status", payload.Status).
			Msg("reservation event")
		return nil
	}

	bus.Subscribe(events.EventReservationCreated, handler)
	bus.Subscribe(events.EventReservationUpdated, handler)
	bus.Subscribe(events.EventReservationCancelled, handler)
}
