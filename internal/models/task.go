package models

import (
	"time"
)

// Priority represents how urgent a saved page is
type Priority string

const (
	PriorityHigh   Priority = "P0"
	PriorityMedium Priority = "P1"
	PriorityLow    Priority = "P2"
)

// Rank orders priorities with P0 first. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Label returns the human-readable name shown next to the priority badge
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityLow:
		return "Low"
	default:
		return "Medium"
	}
}

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

// Toggle flips open and done
func (s TaskStatus) Toggle() TaskStatus {
	if s == TaskStatusOpen {
		return TaskStatusDone
	}
	return TaskStatusOpen
}

// Task represents a page the user saved to come back to
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Favicon   string     `json:"favicon,omitempty"`
	Notes     string     `json:"notes"`
	Priority  Priority   `json:"priority"`
	DueDate   string     `json:"due_date,omitempty"` // YYYY-MM-DD
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsOpen reports whether the task still needs doing
func (t Task) IsOpen() bool {
	return t.Status == TaskStatusOpen
}

// TaskUpdate carries a partial update. Nil fields are left untouched.
type TaskUpdate struct {
	Title    *string     `json:"title,omitempty"`
	Notes    *string     `json:"notes,omitempty"`
	Priority *Priority   `json:"priority,omitempty"`
	DueDate  *string     `json:"due_date,omitempty"`
	Status   *TaskStatus `json:"status,omitempty"`
}

// Apply returns a copy of t with the update applied
func (u TaskUpdate) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		t.DueDate = *u.DueDate
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	return t
}

// OpenTasks returns the open subset in list order
func OpenTasks(tasks []Task) []Task {
	var open []Task
	for _, t := range tasks {
		if t.IsOpen() {
			open = append(open, t)
		}
	}
	return open
}

// DoneTasks returns the done subset in list order
func DoneTasks(tasks []Task) []Task {
	var done []Task
	for _, t := range tasks {
		if t.Status == TaskStatusDone {
			done = append(done, t)
		}
	}
	return done
}
