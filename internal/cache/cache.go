// Package cache stores summary and keyword results keyed by page URL.
// Implementations never fail a caller: a cache error is a miss.
package cache

import (
	"context"
	"sync"

	"github.com/benvon/focusdock/internal/models"
)

// ResultCache is the URL-keyed cache for analysis results
type ResultCache interface {
	GetSummary(ctx context.Context, url string) (models.SummaryResult, bool)
	PutSummary(ctx context.Context, url string, result models.SummaryResult)
	GetKeywords(ctx context.Context, url string) (models.KeywordResult, bool)
	PutKeywords(ctx context.Context, url string, result models.KeywordResult)
}

// Memory is an in-process ResultCache
type Memory struct {
	mu        sync.RWMutex
	summaries map[string]models.SummaryResult
	keywords  map[string]models.KeywordResult
}

var _ ResultCache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		summaries: make(map[string]models.SummaryResult),
		keywords:  make(map[string]models.KeywordResult),
	}
}

func (m *Memory) GetSummary(_ context.Context, url string) (models.SummaryResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.summaries[url]
	return r, ok
}

func (m *Memory) PutSummary(_ context.Context, url string, result models.SummaryResult) {
	if url == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[url] = result
}

func (m *Memory) GetKeywords(_ context.Context, url string) (models.KeywordResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.keywords[url]
	return r, ok
}

func (m *Memory) PutKeywords(_ context.Context, url string, result models.KeywordResult) {
	if url == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keywords[url] = result
}

// Nop caches nothing
type Nop struct{}

var _ ResultCache = Nop{}

func (Nop) GetSummary(context.Context, string) (models.SummaryResult, bool) {
	return models.SummaryResult{}, false
}
func (Nop) PutSummary(context.Context, string, models.SummaryResult) {}
func (Nop) GetKeywords(context.Context, string) (models.KeywordResult, bool) {
	return models.KeywordResult{}, false
}
func (Nop) PutKeywords(context.Context, string, models.KeywordResult) {}
