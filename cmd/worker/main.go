package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/analysis"
	"github.com/benvon/focusdock/internal/cache"
	"github.com/benvon/focusdock/internal/config"
	"github.com/benvon/focusdock/internal/database"
	"github.com/benvon/focusdock/internal/logger"
	"github.com/benvon/focusdock/internal/queue"
	"github.com/benvon/focusdock/internal/telemetry"
	"github.com/benvon/focusdock/internal/workers"
)

const (
	serviceName        = "focusdock-worker"
	version            = "1.0.0"
	rabbitMQMaxRetries = 10
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.New(logger.Options{Debug: debugMode, Service: serviceName})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	if cfg.RabbitMQURL == "" {
		zapLogger.Fatal("rabbitmq_url_not_configured")
	}

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
		zap.Bool("redis_configured", cfg.RedisURL != ""),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, shutdownTracer := telemetry.Setup(ctx, telemetry.Options{
		Enabled:        cfg.OTELEnabled,
		ServiceName:    serviceName,
		ServiceVersion: version,
		Endpoint:       cfg.OTELEndpoint,
	}, zapLogger)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	// Without Redis the precomputed results never reach the API process
	var resultCache cache.ResultCache = cache.NewMemory()
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := client.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		resultCache = cache.NewRedis(client, cfg.CacheTTL, zapLogger)
	} else {
		zapLogger.Warn("redis_not_configured_results_stay_local")
	}

	jobQueue, err := queue.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, rabbitMQMaxRetries, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	analyzer := workers.NewPageAnalyzer(
		analysis.NewService(resultCache, analysis.WithTracerProvider(tracerProvider)),
		jobQueue,
		zapLogger,
		workers.WithTaskGetter(database.NewTaskRepository(db)),
	)

	zapLogger.Info("worker_started")
	if err := analyzer.Run(ctx, cfg.RabbitMQPrefetch); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("worker_stopped_with_error", zap.Error(err))
		return
	}
	zapLogger.Info("worker_stopped")
}
