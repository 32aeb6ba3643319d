package timer

import (
	"fmt"
	"time"

	"github.com/benvon/focusdock/internal/models"
)

// Reconcile advances a persisted running state to now. Whole seconds elapsed
// since SyncedAt (or StartedAt when SyncedAt is missing) are subtracted from
// the remaining time. It reports whether the session ran out meanwhile.
// Paused and stopped states are returned unchanged.
func Reconcile(state models.TimerState, now time.Time) (models.TimerState, bool) {
	if state.Status != models.TimerStatusRunning {
		return state, false
	}

	ref := state.SyncedAt
	if ref == nil {
		ref = state.StartedAt
	}
	if ref == nil {
		return state, false
	}

	elapsed := int(now.Sub(*ref) / time.Second)
	if elapsed <= 0 {
		return state, false
	}

	state.RemainingSeconds -= elapsed
	if state.RemainingSeconds <= 0 {
		state.RemainingSeconds = 0
		state.Status = models.TimerStatusStopped
		state.PausedAt = nil
		state.SyncedAt = nil
		return state, true
	}

	// keep the sub-second remainder so repeated reconciles do not drift
	synced := ref.Add(time.Duration(elapsed) * time.Second)
	state.SyncedAt = &synced
	return state, false
}

// FormatClock renders seconds as MM:SS
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
