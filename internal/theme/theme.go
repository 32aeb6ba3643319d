// Package theme owns the two-valued light/dark setting.
package theme

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/models"
)

// Store is a single slot holding the persisted theme
type Store interface {
	LoadTheme(ctx context.Context) (models.Theme, bool, error)
	SaveTheme(ctx context.Context, theme models.Theme) error
}

type Manager struct {
	mu     sync.Mutex
	theme  models.Theme
	store  Store
	logger *zap.Logger
}

// NewManager starts in light mode. Call Restore to pick up the stored value.
func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{theme: models.ThemeLight, store: store, logger: logger}
}

// Restore loads the persisted theme. Read failures keep the current value.
func (m *Manager) Restore(ctx context.Context) models.Theme {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store == nil {
		return m.theme
	}
	t, ok, err := m.store.LoadTheme(ctx)
	if err != nil {
		m.logger.Warn("failed_to_load_theme", zap.Error(err))
		return m.theme
	}
	if ok && t.Valid() {
		m.theme = t
	}
	return m.theme
}

func (m *Manager) Current() models.Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme
}

// Set switches to t and persists it
func (m *Manager) Set(ctx context.Context, t models.Theme) (models.Theme, error) {
	if !t.Valid() {
		return m.Current(), fmt.Errorf("invalid theme %q", t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.theme = t
	m.persistLocked(ctx)
	return m.theme, nil
}

// Toggle flips between light and dark and returns the new theme
func (m *Manager) Toggle(ctx context.Context) models.Theme {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.theme = m.theme.Opposite()
	m.persistLocked(ctx)
	return m.theme
}

func (m *Manager) persistLocked(ctx context.Context) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveTheme(ctx, m.theme); err != nil {
		m.logger.Warn("failed_to_persist_theme",
			zap.String("theme", string(m.theme)),
			zap.Error(err))
	}
}
