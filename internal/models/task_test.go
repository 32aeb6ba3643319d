package models

import (
	"testing"
	"time"
)

func TestPriority_Rank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		priority Priority
		want     int
	}{
		{"high", PriorityHigh, 0},
		{"medium", PriorityMedium, 1},
		{"low", PriorityLow, 2},
		{"unknown", Priority("P9"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.priority.Rank(); got != tt.want {
				t.Errorf("Rank() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTaskStatus_Toggle(t *testing.T) {
	t.Parallel()

	if got := TaskStatusOpen.Toggle(); got != TaskStatusDone {
		t.Errorf("open.Toggle() = %s, want done", got)
	}
	if got := TaskStatusDone.Toggle(); got != TaskStatusOpen {
		t.Errorf("done.Toggle() = %s, want open", got)
	}
}

func TestTaskUpdate_Apply(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	task := Task{ID: "a", Title: "Read post", Notes: "skim", Priority: PriorityMedium, Status: TaskStatusOpen, CreatedAt: created}

	done := TaskStatusDone
	notes := "finished reading"
	got := TaskUpdate{Status: &done, Notes: &notes}.Apply(task)

	if got.Status != TaskStatusDone {
		t.Errorf("Status = %s, want done", got.Status)
	}
	if got.Notes != notes {
		t.Errorf("Notes = %q, want %q", got.Notes, notes)
	}
	if got.Title != task.Title || got.Priority != task.Priority || !got.CreatedAt.Equal(created) {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if task.Status != TaskStatusOpen {
		t.Error("Apply mutated the original task")
	}
}

func TestOpenAndDoneTasks(t *testing.T) {
	t.Parallel()

	tasks := []Task{
		{ID: "a", Status: TaskStatusOpen},
		{ID: "b", Status: TaskStatusDone},
		{ID: "c", Status: TaskStatusOpen},
	}

	open := OpenTasks(tasks)
	if len(open) != 2 || open[0].ID != "a" || open[1].ID != "c" {
		t.Errorf("OpenTasks() = %+v", open)
	}
	done := DoneTasks(tasks)
	if len(done) != 1 || done[0].ID != "b" {
		t.Errorf("DoneTasks() = %+v", done)
	}
}

func TestResults_CopyText(t *testing.T) {
	t.Parallel()

	summary := SummaryResult{Bullets: []string{"One.", "Two."}}
	if got, want := summary.CopyText(), "• One.\n• Two."; got != want {
		t.Errorf("SummaryResult.CopyText() = %q, want %q", got, want)
	}

	keywords := KeywordResult{
		Skills:     []string{"React"},
		Tools:      []string{"Docker"},
		SoftSkills: []string{"Agile"},
		Suggested:  []string{"Ignored Phrase"},
	}
	if got, want := keywords.CopyText(), "React, Docker, Agile"; got != want {
		t.Errorf("KeywordResult.CopyText() = %q, want %q", got, want)
	}
}

func TestTheme_Opposite(t *testing.T) {
	t.Parallel()

	if ThemeLight.Opposite() != ThemeDark || ThemeDark.Opposite() != ThemeLight {
		t.Error("Opposite() did not flip themes")
	}
	if Theme("sepia").Valid() {
		t.Error("unexpected valid theme")
	}
}
