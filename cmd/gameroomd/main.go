package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"gameroom/internal/config"
	"gameroom/internal/database"
	"gameroom/internal/domain"
	"gameroom/internal/events"
	"gameroom/internal/export"
	"gameroom/internal/lock"
	"gameroom/internal/logging"
	"gameroom/internal/metrics"
	"gameroom/internal/service"
	"gameroom/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	locker := initLocker(cfg, redisClient, &logger)
	bus := events.NewEventBus()
	clock := service.SystemClock()

	bookingService := service.NewBookingService(db, db, locker, bus, clock, &logger)
	scheduleService := service.NewScheduleService(db, db, &logger)
	exporter := export.NewScheduleExporter(bookingService, scheduleService, cfg.Booking.ExportPath, &logger)

	reconciler := worker.NewStatusReconciler(db, clock, cfg.Booking.ReconcileInterval, cfg.Booking.ReconcileRPS, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reconciler.Run(ctx)
	go runDailyExport(ctx, exporter, clock, &logger)
	startMetrics(ctx, cfg, &logger)

	logger.Info().
		Str("db_path", cfg.Database.Path).
		Int("devices", len(cfg.Devices)).
		Msg("booking engine started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.WithComponent(baseLogger, "gameroomd")

	return cfg, logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.SeedDevices(ctx, cfg.Devices); err != nil {
		logger.Error().Err(err).Msg("seed devices")
		return nil, err
	}
	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initLocker prefers the distributed redis lock and falls back to the
// in-process one when redis is absent or unhealthy.
func initLocker(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.DeviceLocker {
	memory := lock.NewMemoryLocker()
	if redisClient == nil {
		return memory
	}
	return lock.NewFailoverLocker(lock.NewRedisLocker(redisClient, cfg.Booking.LockTTL), memory, logger)
}

// runDailyExport writes the coming week's schedule workbook once a day
// for front-desk staff.
func runDailyExport(ctx context.Context, exporter *export.ScheduleExporter, clock domain.Clock, logger *zerolog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	exportWeek := func() {
		now := clock.Now()
		if _, err := exporter.Export(ctx, now, now.AddDate(0, 0, 7)); err != nil {
			logger.Error().Err(err).Msg("schedule export failed")
		}
	}

	exportWeek()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			exportWeek()
		}
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
