package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/queue"
)

func (h *apiHarness) savePage(t *testing.T, body map[string]any) models.Task {
	t.Helper()
	w := h.do(t, "POST", "/api/v1/tasks", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("save status = %d: %s", w.Code, w.Body.String())
	}
	var task models.Task
	decodeEnvelope(t, w, &task)
	return task
}

func TestTaskHandler_SavePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantTitle  string
		wantPrio   models.Priority
	}{
		{
			name:       "defaults",
			body:       map[string]any{"url": "https://example.com/post"},
			wantStatus: http.StatusCreated,
			wantTitle:  "https://example.com/post",
			wantPrio:   models.PriorityMedium,
		},
		{
			name:       "full request",
			body:       map[string]any{"url": "https://example.com/a", "title": "  Read later ", "priority": "P0", "due_date": "2026-11-01"},
			wantStatus: http.StatusCreated,
			wantTitle:  "Read later",
			wantPrio:   models.PriorityHigh,
		},
		{name: "missing url", body: map[string]any{"title": "x"}, wantStatus: http.StatusBadRequest},
		{name: "bad priority", body: map[string]any{"url": "https://example.com", "priority": "P9"}, wantStatus: http.StatusBadRequest},
		{name: "bad due date", body: map[string]any{"url": "https://example.com", "due_date": "next week"}, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: map[string]any{"url": "https://example.com", "owner": "me"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newAPIHarness(t)
			w := h.do(t, "POST", "/api/v1/tasks", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var task models.Task
			decodeEnvelope(t, w, &task)
			if task.Title != tt.wantTitle || task.Priority != tt.wantPrio || task.Status != models.TaskStatusOpen {
				t.Errorf("task = %+v", task)
			}
		})
	}
}

func TestTaskHandler_SavePageEnqueuesAnalysis(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	task := h.savePage(t, map[string]any{
		"url":  "https://jobs.example/1",
		"text": "We need a React and TypeScript engineer with strong communication skills.",
	})
	h.savePage(t, map[string]any{"url": "https://jobs.example/2"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	messages, _, err := h.jobs.Consume(ctx, 1)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	select {
	case msg := <-messages:
		job := msg.GetJob()
		if job.Type != queue.JobTypePageAnalysis || job.TaskID != task.ID {
			t.Errorf("job = %+v", job)
		}
		if job.Page == nil || job.Page.URL != "https://jobs.example/1" {
			t.Errorf("job page = %+v", job.Page)
		}
		_ = msg.Ack()
	case <-ctx.Done():
		t.Fatal("no analysis job enqueued")
	}

	select {
	case msg := <-messages:
		t.Errorf("page without text enqueued a job: %+v", msg.GetJob())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTaskHandler_ListAndFilter(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	first := h.savePage(t, map[string]any{"url": "https://a.example", "title": "First"})
	h.savePage(t, map[string]any{"url": "https://b.example", "title": "Second"})

	if w := h.do(t, "POST", "/api/v1/tasks/"+first.ID+"/toggle", nil); w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", w.Code)
	}

	tests := []struct {
		query      string
		wantTitles []string
	}{
		{query: "", wantTitles: []string{"Second", "First"}},
		{query: "?status=open", wantTitles: []string{"Second"}},
		{query: "?status=done", wantTitles: []string{"First"}},
	}
	for _, tt := range tests {
		w := h.do(t, "GET", "/api/v1/tasks"+tt.query, nil)
		var resp ListTasksResponse
		decodeEnvelope(t, w, &resp)
		if resp.Open != 1 || resp.Done != 1 {
			t.Errorf("%q counts = open %d done %d", tt.query, resp.Open, resp.Done)
		}
		if len(resp.Tasks) != len(tt.wantTitles) {
			t.Fatalf("%q got %d tasks, want %d", tt.query, len(resp.Tasks), len(tt.wantTitles))
		}
		for i, title := range tt.wantTitles {
			if resp.Tasks[i].Title != title {
				t.Errorf("%q task %d = %q, want %q", tt.query, i, resp.Tasks[i].Title, title)
			}
		}
	}

	if w := h.do(t, "GET", "/api/v1/tasks?status=archived", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad status filter = %d, want 400", w.Code)
	}
}

func TestTaskHandler_EmptyListIsArray(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	w := h.do(t, "GET", "/api/v1/tasks", nil)
	env := decodeEnvelope(t, w, nil)
	if got := string(env.Data); got != `{"tasks":[],"open":0,"done":0}` {
		t.Errorf("data = %s", got)
	}
}

func TestTaskHandler_GetUpdateDelete(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	task := h.savePage(t, map[string]any{"url": "https://a.example", "title": "Draft"})

	w := h.do(t, "PATCH", "/api/v1/tasks/"+task.ID, map[string]any{"notes": "  skim intro ", "priority": "P2"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d: %s", w.Code, w.Body.String())
	}
	var updated models.Task
	decodeEnvelope(t, w, &updated)
	if updated.Notes != "skim intro" || updated.Priority != models.PriorityLow || updated.Title != "Draft" {
		t.Errorf("updated = %+v", updated)
	}

	rejected := []map[string]any{
		{"title": "   "},
		{"priority": "urgent"},
		{"status": "archived"},
		{"due_date": "31/12/2026"},
	}
	for _, body := range rejected {
		if w := h.do(t, "PATCH", "/api/v1/tasks/"+task.ID, body); w.Code != http.StatusBadRequest {
			t.Errorf("PATCH %v status = %d, want 400", body, w.Code)
		}
	}

	if w := h.do(t, "GET", "/api/v1/tasks/"+task.ID, nil); w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}
	if w := h.do(t, "DELETE", "/api/v1/tasks/"+task.ID, nil); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}

	for _, req := range []struct{ method, path string }{
		{"GET", "/api/v1/tasks/" + task.ID},
		{"DELETE", "/api/v1/tasks/" + task.ID},
		{"POST", "/api/v1/tasks/" + task.ID + "/toggle"},
	} {
		w := h.do(t, req.method, req.path, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s after delete = %d, want 404", req.method, req.path, w.Code)
		}
	}
	w = h.do(t, "PATCH", "/api/v1/tasks/"+task.ID, map[string]any{"notes": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("PATCH after delete = %d, want 404", w.Code)
	}
}

func TestTaskHandler_Find(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	h.savePage(t, map[string]any{"url": "https://a.example", "title": "Quarterly report"})
	h.savePage(t, map[string]any{"url": "https://b.example", "title": "Blog draft"})

	tests := []struct {
		query      string
		wantStatus int
		wantTitle  string
	}{
		{query: "blog", wantStatus: http.StatusOK, wantTitle: "Blog draft"},
		{query: "report", wantStatus: http.StatusOK, wantTitle: "Quarterly report"},
		{query: "zzz", wantStatus: http.StatusNotFound},
		{query: "", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := h.do(t, "GET", "/api/v1/tasks/find?q="+tt.query, nil)
		if w.Code != tt.wantStatus {
			t.Errorf("find %q status = %d, want %d", tt.query, w.Code, tt.wantStatus)
			continue
		}
		if tt.wantStatus == http.StatusOK {
			var task models.Task
			decodeEnvelope(t, w, &task)
			if task.Title != tt.wantTitle {
				t.Errorf("find %q = %q, want %q", tt.query, task.Title, tt.wantTitle)
			}
		}
	}
}
