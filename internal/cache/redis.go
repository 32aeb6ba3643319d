package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/models"
)

const (
	summaryPrefix  = "focusdock:summary:"
	keywordsPrefix = "focusdock:keywords:"
)

// NewRedisClient parses redisURL and checks the server is reachable
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Redis is a ResultCache shared by the server and the analysis worker
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

var _ ResultCache = (*Redis)(nil)

// NewRedis wraps client. A ttl of zero keeps entries until evicted.
func NewRedis(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) GetSummary(ctx context.Context, url string) (models.SummaryResult, bool) {
	var out models.SummaryResult
	return out, r.get(ctx, summaryPrefix+url, &out)
}

func (r *Redis) PutSummary(ctx context.Context, url string, result models.SummaryResult) {
	if url != "" {
		r.put(ctx, summaryPrefix+url, result)
	}
}

func (r *Redis) GetKeywords(ctx context.Context, url string) (models.KeywordResult, bool) {
	var out models.KeywordResult
	return out, r.get(ctx, keywordsPrefix+url, &out)
}

func (r *Redis) PutKeywords(ctx context.Context, url string, result models.KeywordResult) {
	if url != "" {
		r.put(ctx, keywordsPrefix+url, result)
	}
}

func (r *Redis) get(ctx context.Context, key string, dst any) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		r.logger.Warn("failed_to_read_cache", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.logger.Warn("failed_to_decode_cache_entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *Redis) put(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("failed_to_encode_cache_entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("failed_to_write_cache", zap.String("key", key), zap.Error(err))
	}
}
