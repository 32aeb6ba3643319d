package models

import "time"

// TimerStatus represents the focus timer's state
type TimerStatus string

const (
	TimerStatusStopped TimerStatus = "stopped"
	TimerStatusRunning TimerStatus = "running"
	TimerStatusPaused  TimerStatus = "paused"
)

// TimerState is the persisted snapshot of the focus timer
type TimerState struct {
	Status           TimerStatus `json:"status"`
	RemainingSeconds int         `json:"remaining_seconds"`
	TotalSeconds     int         `json:"total_seconds"`
	LinkedTaskID     string      `json:"linked_task_id,omitempty"`
	LinkedTaskTitle  string      `json:"linked_task_title,omitempty"`
	StartedAt        *time.Time  `json:"started_at,omitempty"`
	PausedAt         *time.Time  `json:"paused_at,omitempty"`
	// SyncedAt is when RemainingSeconds was last known to be exact
	SyncedAt *time.Time `json:"synced_at,omitempty"`
}

// StoppedTimer is the initial and post-stop state
func StoppedTimer() TimerState {
	return TimerState{Status: TimerStatusStopped}
}
