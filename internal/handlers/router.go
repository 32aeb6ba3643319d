package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/analysis"
	"github.com/benvon/focusdock/internal/chat"
	"github.com/benvon/focusdock/internal/middleware"
	"github.com/benvon/focusdock/internal/tasks"
	"github.com/benvon/focusdock/internal/telemetry"
	"github.com/benvon/focusdock/internal/theme"
	"github.com/benvon/focusdock/internal/timer"
)

// ServiceName identifies the API in traces
const ServiceName = "focusdock-api"

// RouterDeps is everything the HTTP API is built from
type RouterDeps struct {
	Tasks    *tasks.Service
	Jobs     JobEnqueuer
	Analysis *analysis.Service
	Chat     *chat.Orchestrator
	Timer    *timer.Machine
	Theme    *theme.Manager
	Health   map[string]Checker
	Logger   *zap.Logger

	// TracerProvider enables request tracing when set
	TracerProvider trace.TracerProvider

	FrontendURL         string
	EnableHSTS          bool
	RateLimitStore      limiter.Store
	RateLimit           string
	RequestTimeout      time.Duration
	DefaultTimerMinutes int
}

// NewRouter builds the API router with the full middleware chain. Middleware
// registered first wraps outermost.
func NewRouter(d RouterDeps) (*mux.Router, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	if d.TracerProvider != nil {
		r.Use(telemetry.RouterMiddleware(ServiceName, d.TracerProvider))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(d.EnableHSTS))
	r.Use(middleware.CORSFromEnv(d.FrontendURL, logger))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize, logger))
	r.Use(middleware.ContentType(logger))
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Logging(logger))

	// Public routes (no rate limiting for health checks)
	NewHealthChecker(d.Health).RegisterRoutes(r)
	NewOpenAPIHandler().RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	if d.RateLimitStore != nil {
		rateLimitMW, err := middleware.RateLimit(d.RateLimitStore, d.RateLimit, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to configure rate limiting: %w", err)
		}
		apiRouter.Use(rateLimitMW)
	}

	NewTaskHandler(d.Tasks, d.Jobs, logger).RegisterRoutes(apiRouter.PathPrefix("/tasks").Subrouter())
	NewPageHandler(d.Analysis, logger).RegisterRoutes(apiRouter.PathPrefix("/pages").Subrouter())
	NewChatHandler(d.Chat, logger).RegisterRoutes(apiRouter.PathPrefix("/chat").Subrouter())
	NewTimerHandler(d.Timer, d.Tasks, d.DefaultTimerMinutes, logger).RegisterRoutes(apiRouter.PathPrefix("/timer").Subrouter())
	NewThemeHandler(d.Theme).RegisterRoutes(apiRouter.PathPrefix("/theme").Subrouter())
	NewWebSocketHandler(d.Timer, d.Chat, middleware.ParseOrigins(d.FrontendURL), logger).RegisterRoutes(apiRouter)

	// Catch-all OPTIONS route so the CORS middleware sees every preflight
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r, nil
}
