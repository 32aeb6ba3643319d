package middleware

import (
	"fmt"
	"net/http"

	"github.com/benvon/focusdock/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	// DefaultRate allows 20 requests per second per client
	DefaultRate = "20-S"

	rateLimitPrefix = "focusdock:ratelimit"
)

// NewRateLimitStore returns a Redis-backed store when a client is given so
// limits are shared across server replicas, and an in-process store otherwise.
func NewRateLimitStore(client redis.UniversalClient) (limiter.Store, error) {
	opts := limiter.StoreOptions{
		Prefix:          rateLimitPrefix,
		MaxRetry:        limiter.DefaultMaxRetry,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	}
	if client == nil {
		return memorystore.NewStoreWithOptions(opts), nil
	}
	store, err := redisstore.NewStoreWithOptions(client, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}
	return store, nil
}

// RateLimit returns middleware that limits requests per client IP at the
// formatted rate (e.g. "20-S", "1000-H")
func RateLimit(store limiter.Store, formatted string, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	if formatted == "" {
		formatted = DefaultRate
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}

	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance,
		stdlibmw.WithKeyGetter(keyGetter),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("rate_limit_exceeded",
				zap.String("client_ip", request.ClientIP(r)),
				zap.String("path", r.URL.Path),
			)
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded", logger)
		}),
		stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("rate_limit_store_failed", zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "rate limiter unavailable", logger)
		}),
	)
	return mw.Handler, nil
}
