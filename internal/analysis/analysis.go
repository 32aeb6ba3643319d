// Package analysis runs the summarizer and keyword classifier on page
// content, enforcing minimum content lengths and caching results by URL.
package analysis

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/benvon/focusdock/internal/cache"
	"github.com/benvon/focusdock/internal/keywords"
	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/summarizer"
)

const (
	// MinSummaryChars is the shortest page text worth summarizing
	MinSummaryChars = 100
	// MinKeywordChars is the shortest page text worth scanning for keywords
	MinKeywordChars = 50
)

var (
	ErrInsufficientContent = errors.New("not enough content on this page")
	ErrNoKeywords          = errors.New("no relevant keywords found")
)

const tracerName = "github.com/benvon/focusdock/internal/analysis"

type Service struct {
	cache  cache.ResultCache
	tracer trace.Tracer
}

// Option configures a Service
type Option func(*Service)

// WithTracerProvider overrides the global tracer provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

// NewService wraps c. A nil cache disables caching.
func NewService(c cache.ResultCache, opts ...Option) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	s := &Service{cache: c, tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize summarizes the page and caches the result under its URL
func (s *Service) Summarize(ctx context.Context, page models.PageContent) (models.SummaryResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.summarize", trace.WithAttributes(
		attribute.Int("page.text_length", len(page.Text)),
	))
	defer span.End()

	if contentLength(page.Text) < MinSummaryChars {
		span.SetAttributes(attribute.Bool("analysis.insufficient", true))
		return models.SummaryResult{}, ErrInsufficientContent
	}

	result := summarizer.Summarize(page.Text, page.Title)
	span.SetAttributes(attribute.Int("summary.bullets", len(result.Bullets)))
	s.cache.PutSummary(ctx, page.URL, result)
	return result, nil
}

// Keywords classifies the page's keywords and caches a non-empty result
func (s *Service) Keywords(ctx context.Context, page models.PageContent) (models.KeywordResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.keywords", trace.WithAttributes(
		attribute.Int("page.text_length", len(page.Text)),
	))
	defer span.End()

	if contentLength(page.Text) < MinKeywordChars {
		span.SetAttributes(attribute.Bool("analysis.insufficient", true))
		return models.KeywordResult{}, ErrInsufficientContent
	}

	result := keywords.Extract(page.Text)
	count := keywords.Count(result)
	span.SetAttributes(attribute.Int("keywords.count", count))
	if count == 0 {
		return result, ErrNoKeywords
	}
	s.cache.PutKeywords(ctx, page.URL, result)
	return result, nil
}

// SummaryFor returns the cached summary for the page URL, computing it on a
// miss.
func (s *Service) SummaryFor(ctx context.Context, page models.PageContent) (models.SummaryResult, error) {
	if r, ok := s.CachedSummary(ctx, page.URL); ok {
		return r, nil
	}
	return s.Summarize(ctx, page)
}

// KeywordsFor returns the cached keywords for the page URL, computing them on
// a miss.
func (s *Service) KeywordsFor(ctx context.Context, page models.PageContent) (models.KeywordResult, error) {
	if r, ok := s.CachedKeywords(ctx, page.URL); ok {
		return r, nil
	}
	return s.Keywords(ctx, page)
}

func (s *Service) CachedSummary(ctx context.Context, url string) (models.SummaryResult, bool) {
	if url == "" {
		return models.SummaryResult{}, false
	}
	return s.cache.GetSummary(ctx, url)
}

func (s *Service) CachedKeywords(ctx context.Context, url string) (models.KeywordResult, bool) {
	if url == "" {
		return models.KeywordResult{}, false
	}
	return s.cache.GetKeywords(ctx, url)
}

// Precompute fills the cache for a page ahead of the user asking. Pages too
// short for either analysis are skipped without error.
func (s *Service) Precompute(ctx context.Context, page models.PageContent) error {
	var errs []error
	if _, err := s.Summarize(ctx, page); err != nil && !errors.Is(err, ErrInsufficientContent) {
		errs = append(errs, err)
	}
	if _, err := s.Keywords(ctx, page); err != nil &&
		!errors.Is(err, ErrInsufficientContent) && !errors.Is(err, ErrNoKeywords) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func contentLength(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}
