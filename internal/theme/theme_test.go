package theme

import (
	"context"
	"errors"
	"testing"

	"github.com/benvon/focusdock/internal/models"
)

type mockStore struct {
	theme   models.Theme
	found   bool
	loadErr error
	saveErr error
	saves   int
}

func (m *mockStore) LoadTheme(context.Context) (models.Theme, bool, error) {
	return m.theme, m.found, m.loadErr
}

func (m *mockStore) SaveTheme(_ context.Context, t models.Theme) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.theme, m.found = t, true
	return nil
}

func TestManager_RestoreAndToggle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &mockStore{theme: models.ThemeDark, found: true}
	m := NewManager(store, nil)

	if got := m.Current(); got != models.ThemeLight {
		t.Errorf("initial theme = %q, want light", got)
	}
	if got := m.Restore(ctx); got != models.ThemeDark {
		t.Errorf("Restore() = %q, want dark", got)
	}
	if got := m.Toggle(ctx); got != models.ThemeLight {
		t.Errorf("Toggle() = %q, want light", got)
	}
	if store.theme != models.ThemeLight || store.saves != 1 {
		t.Errorf("store = %+v, want light saved once", store)
	}
}

func TestManager_Set(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewManager(&mockStore{}, nil)

	if got, err := m.Set(ctx, models.ThemeDark); err != nil || got != models.ThemeDark {
		t.Errorf("Set(dark) = %q, %v", got, err)
	}
	if _, err := m.Set(ctx, models.Theme("sepia")); err == nil {
		t.Error("expected error for unknown theme")
	}
	if got := m.Current(); got != models.ThemeDark {
		t.Errorf("Current() after bad Set = %q, want dark", got)
	}
}

func TestManager_StoreFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &mockStore{loadErr: errors.New("down"), saveErr: errors.New("down")}
	m := NewManager(store, nil)

	if got := m.Restore(ctx); got != models.ThemeLight {
		t.Errorf("Restore() with failing store = %q, want light", got)
	}
	if got := m.Toggle(ctx); got != models.ThemeDark {
		t.Errorf("Toggle() with failing store = %q, want dark", got)
	}
}
