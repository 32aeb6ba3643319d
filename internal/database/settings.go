package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/theme"
	"github.com/benvon/focusdock/internal/timer"
)

const (
	settingTimerState = "timer_state"
	settingTheme      = "theme"
)

// SettingsRepository stores single-value settings slots keyed by name. It
// backs the persisted timer state and the theme.
type SettingsRepository struct {
	db  *DB
	now func() time.Time
}

var (
	_ timer.StateStore = (*SettingsRepository)(nil)
	_ theme.Store      = (*SettingsRepository)(nil)
)

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db, now: time.Now}
}

// Value reads a raw slot. The bool is false when the slot is empty.
func (r *SettingsRepository) Value(ctx context.Context, key string) (string, bool, error) {
	query := r.db.Rebind(`SELECT value FROM settings WHERE key = ?`)

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetValue writes a raw slot, replacing any previous value
func (r *SettingsRepository) SetValue(ctx context.Context, key, value string) error {
	query := r.db.Rebind(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)

	if _, err := r.db.ExecContext(ctx, query, key, value, formatTime(r.now())); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// DeleteValue empties a slot
func (r *SettingsRepository) DeleteValue(ctx context.Context, key string) error {
	query := r.db.Rebind(`DELETE FROM settings WHERE key = ?`)

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// Load returns the persisted timer state
func (r *SettingsRepository) Load(ctx context.Context) (models.TimerState, bool, error) {
	raw, ok, err := r.Value(ctx, settingTimerState)
	if err != nil || !ok {
		return models.TimerState{}, false, err
	}

	var state models.TimerState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return models.TimerState{}, false, fmt.Errorf("failed to unmarshal timer state: %w", err)
	}
	return state, true, nil
}

// Save persists the timer state
func (r *SettingsRepository) Save(ctx context.Context, state models.TimerState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal timer state: %w", err)
	}
	return r.SetValue(ctx, settingTimerState, string(raw))
}

// Clear removes the persisted timer state
func (r *SettingsRepository) Clear(ctx context.Context) error {
	return r.DeleteValue(ctx, settingTimerState)
}

func (r *SettingsRepository) LoadTheme(ctx context.Context) (models.Theme, bool, error) {
	raw, ok, err := r.Value(ctx, settingTheme)
	if err != nil || !ok {
		return "", false, err
	}
	return models.Theme(raw), true, nil
}

func (r *SettingsRepository) SaveTheme(ctx context.Context, t models.Theme) error {
	return r.SetValue(ctx, settingTheme, string(t))
}
