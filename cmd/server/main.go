package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/analysis"
	"github.com/benvon/focusdock/internal/cache"
	"github.com/benvon/focusdock/internal/chat"
	"github.com/benvon/focusdock/internal/config"
	"github.com/benvon/focusdock/internal/database"
	"github.com/benvon/focusdock/internal/handlers"
	"github.com/benvon/focusdock/internal/logger"
	"github.com/benvon/focusdock/internal/middleware"
	"github.com/benvon/focusdock/internal/queue"
	"github.com/benvon/focusdock/internal/tasks"
	"github.com/benvon/focusdock/internal/telemetry"
	"github.com/benvon/focusdock/internal/theme"
	"github.com/benvon/focusdock/internal/timer"
	"github.com/benvon/focusdock/internal/workers"
)

const (
	version            = "1.0.0"
	rabbitMQMaxRetries = 10
	dlqInterval        = 1 * time.Hour
	dlqRetention       = 24 * time.Hour
	memoryQueueSize    = 256
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(logger.Options{Debug: debugMode, Service: handlers.ServiceName})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("redis_configured", cfg.RedisURL != ""),
		zap.Bool("rabbitmq_configured", cfg.RabbitMQURL != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, shutdownTracer := telemetry.Setup(ctx, telemetry.Options{
		Enabled:        cfg.OTELEnabled,
		ServiceName:    handlers.ServiceName,
		ServiceVersion: version,
		Endpoint:       cfg.OTELEndpoint,
	}, zapLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
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
	zapLogger.Info("connected_to_database", zap.String("dialect", string(db.Dialect())))

	health := map[string]handlers.Checker{
		"database": db,
		"redis":    nil,
		"queue":    nil,
	}

	// Redis backs the shared result cache and the rate limit counters
	var (
		resultCache cache.ResultCache = cache.NewMemory()
		redisClient redis.UniversalClient
	)
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
		redisClient = client
		resultCache = cache.NewRedis(client, cfg.CacheTTL, zapLogger)
		health["redis"] = handlers.CheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		zapLogger.Info("connected_to_redis")
	}

	rateLimitStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}

	taskService := tasks.NewService(database.NewTaskRepository(db))
	analysisService := analysis.NewService(resultCache, analysis.WithTracerProvider(tracerProvider))
	settings := database.NewSettingsRepository(db)

	machine := timer.New(timer.WithStore(settings), timer.WithLogger(zapLogger.Named("timer")))
	defer machine.Close()
	restored := machine.Restore(ctx)
	zapLogger.Info("timer_restored", zap.String("status", string(restored.Status)))

	themes := theme.NewManager(settings, zapLogger)
	themes.Restore(ctx)

	orchestrator := chat.NewOrchestrator(chat.Deps{
		Tasks:               taskService,
		Analyzer:            analysisService,
		Timer:               machine,
		Theme:               themes,
		History:             database.NewChatHistoryRepository(db),
		Logger:              zapLogger.Named("chat"),
		DefaultTimerMinutes: cfg.DefaultTimerMinutes,
	})

	// Page analysis jobs go to RabbitMQ when configured, where cmd/worker
	// consumes them. Otherwise an in-process queue feeds a local analyzer.
	var (
		jobQueue queue.JobQueue
		purger   queue.DLQPurger
	)
	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, rabbitMQMaxRetries, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		jobQueue, purger = rabbit, rabbit
		zapLogger.Info("connected_to_rabbitmq")
	} else {
		memQueue := queue.NewMemoryQueue(memoryQueueSize)
		jobQueue, purger = memQueue, memQueue
		analyzer := workers.NewPageAnalyzer(analysisService, memQueue, zapLogger.Named("worker"),
			workers.WithTaskGetter(taskService.Store()))
		go func() {
			if err := analyzer.Run(ctx, cfg.RabbitMQPrefetch); err != nil {
				zapLogger.Error("page_analyzer_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("using_in_process_job_queue")
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_job_queue", zap.Error(err))
		}
	}()
	health["queue"] = jobQueue

	dlqGC := queue.NewGarbageCollector(purger, dlqInterval, dlqRetention, zapLogger)
	go func() {
		if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()
	zapLogger.Info("started_dlq_garbage_collector",
		zap.Duration("interval", dlqInterval),
		zap.Duration("retention", dlqRetention),
	)

	router, err := handlers.NewRouter(handlers.RouterDeps{
		Tasks:               taskService,
		Jobs:                jobQueue,
		Analysis:            analysisService,
		Chat:                orchestrator,
		Timer:               machine,
		Theme:               themes,
		Health:              health,
		Logger:              zapLogger,
		TracerProvider:      tracerProvider,
		FrontendURL:         cfg.FrontendURL,
		EnableHSTS:          cfg.EnableHSTS,
		RateLimitStore:      rateLimitStore,
		RateLimit:           cfg.RateLimit,
		RequestTimeout:      middleware.DefaultRequestTimeout,
		DefaultTimerMinutes: cfg.DefaultTimerMinutes,
	})
	if err != nil {
		zapLogger.Fatal("failed_to_build_router", zap.Error(err))
	}

	// WriteTimeout stays zero so websocket streams are not cut off; the
	// Timeout middleware bounds ordinary requests.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	zapLogger.Info("server_exited")
}
