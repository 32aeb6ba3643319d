package cache

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/benvon/focusdock/internal/models"
)

func TestMemory_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory()

	if _, ok := c.GetSummary(ctx, "https://example.com"); ok {
		t.Fatal("expected miss on empty cache")
	}

	summary := models.SummaryResult{Bullets: []string{"One."}, PageTitle: "Example"}
	c.PutSummary(ctx, "https://example.com", summary)
	got, ok := c.GetSummary(ctx, "https://example.com")
	if !ok || !slices.Equal(got.Bullets, summary.Bullets) {
		t.Errorf("GetSummary() = %+v, %v", got, ok)
	}

	kw := models.KeywordResult{Skills: []string{"Go"}}
	c.PutKeywords(ctx, "https://example.com", kw)
	gotKW, ok := c.GetKeywords(ctx, "https://example.com")
	if !ok || !slices.Equal(gotKW.Skills, kw.Skills) {
		t.Errorf("GetKeywords() = %+v, %v", gotKW, ok)
	}

	c.PutKeywords(ctx, "", kw)
	if _, ok := c.GetKeywords(ctx, ""); ok {
		t.Error("empty URL should not be cached")
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var c ResultCache = Nop{}
	c.PutSummary(ctx, "u", models.SummaryResult{Bullets: []string{"x"}})
	if _, ok := c.GetSummary(ctx, "u"); ok {
		t.Error("Nop should never hit")
	}
}

func TestRedis_UnreachableIsAMiss(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	core, logs := observer.New(zapcore.WarnLevel)
	c := NewRedis(client, time.Hour, zap.New(core))
	ctx := context.Background()

	c.PutSummary(ctx, "https://example.com", models.SummaryResult{Bullets: []string{"x"}})
	if _, ok := c.GetSummary(ctx, "https://example.com"); ok {
		t.Error("expected miss when Redis is unreachable")
	}
	if logs.FilterMessage("failed_to_write_cache").Len() != 1 {
		t.Error("expected write failure to be logged")
	}
	if logs.FilterMessage("failed_to_read_cache").Len() != 1 {
		t.Error("expected read failure to be logged")
	}
}

func TestNewRedisClient_BadURL(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisClient(context.Background(), "not a url"); err == nil {
		t.Error("expected parse error")
	}
}
