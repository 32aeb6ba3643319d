package analysis

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/benvon/focusdock/internal/cache"
	"github.com/benvon/focusdock/internal/models"
)

const jobText = "We are looking for a senior engineer with 5+ years of experience. " +
	"You will build services with React, TypeScript and Node.js every day. " +
	"The team follows Agile methodologies and values clear communication."

func TestService_Summarize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory()
	svc := NewService(c)

	page := models.PageContent{Text: jobText, Title: "Job", URL: "https://example.com/job"}
	result, err := svc.Summarize(ctx, page)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if len(result.Bullets) == 0 || result.PageTitle != "Job" {
		t.Errorf("Summarize() = %+v", result)
	}

	cached, ok := svc.CachedSummary(ctx, page.URL)
	if !ok || !slices.Equal(cached.Bullets, result.Bullets) {
		t.Errorf("CachedSummary() = %+v, %v", cached, ok)
	}
}

func TestService_InsufficientContent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory()
	svc := NewService(c)

	page := models.PageContent{Text: "   " + strings.Repeat("x", 60) + "   ", URL: "https://example.com/short"}
	if _, err := svc.Summarize(ctx, page); !errors.Is(err, ErrInsufficientContent) {
		t.Errorf("Summarize error = %v, want ErrInsufficientContent", err)
	}
	if _, ok := c.GetSummary(ctx, page.URL); ok {
		t.Error("failed summary must not be cached")
	}

	tiny := models.PageContent{Text: "React Go", URL: "https://example.com/tiny"}
	if _, err := svc.Keywords(ctx, tiny); !errors.Is(err, ErrInsufficientContent) {
		t.Errorf("Keywords error = %v, want ErrInsufficientContent", err)
	}
}

func TestService_Keywords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory()
	svc := NewService(c)

	page := models.PageContent{Text: jobText, URL: "https://example.com/job"}
	result, err := svc.Keywords(ctx, page)
	if err != nil {
		t.Fatalf("Keywords error: %v", err)
	}
	for _, want := range []string{"React", "Typescript", "Node.js"} {
		if !slices.Contains(result.Skills, want) {
			t.Errorf("Skills = %q, want to contain %q", result.Skills, want)
		}
	}
	if !slices.Contains(result.SoftSkills, "Agile") {
		t.Errorf("SoftSkills = %q, want to contain Agile", result.SoftSkills)
	}
	if _, ok := c.GetKeywords(ctx, page.URL); !ok {
		t.Error("expected keywords to be cached")
	}

	none := models.PageContent{Text: strings.Repeat("plain words here without vocabulary ", 3), URL: "https://example.com/none"}
	if _, err := svc.Keywords(ctx, none); !errors.Is(err, ErrNoKeywords) {
		t.Errorf("Keywords error = %v, want ErrNoKeywords", err)
	}
	if _, ok := c.GetKeywords(ctx, none.URL); ok {
		t.Error("empty keyword result must not be cached")
	}
}

func TestService_ForUsesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory()
	c.PutSummary(ctx, "https://example.com/job", models.SummaryResult{Bullets: []string{"Cached."}})
	svc := NewService(c)

	got, err := svc.SummaryFor(ctx, models.PageContent{Text: jobText, URL: "https://example.com/job"})
	if err != nil {
		t.Fatalf("SummaryFor error: %v", err)
	}
	if !slices.Equal(got.Bullets, []string{"Cached."}) {
		t.Errorf("SummaryFor() = %q, want cached bullets", got.Bullets)
	}
}

func TestService_PrecomputeSkipsShortPages(t *testing.T) {
	t.Parallel()

	svc := NewService(cache.NewMemory())
	if err := svc.Precompute(context.Background(), models.PageContent{Text: "tiny"}); err != nil {
		t.Errorf("Precompute error = %v, want nil", err)
	}
}

func TestService_RecordsSpans(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	svc := NewService(nil, WithTracerProvider(tp))
	page := models.PageContent{Text: jobText}
	_, _ = svc.Summarize(context.Background(), page)
	_, _ = svc.Keywords(context.Background(), page)

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}
	if spans[0].Name != "analysis.summarize" || spans[1].Name != "analysis.keywords" {
		t.Errorf("span names = %q, %q", spans[0].Name, spans[1].Name)
	}
}
