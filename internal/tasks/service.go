package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/focusdock/internal/models"
)

// SavePageRequest describes a page being saved to the task list
type SavePageRequest struct {
	Title    string          `json:"title"`
	URL      string          `json:"url" validate:"required,url"`
	Favicon  string          `json:"favicon,omitempty"`
	Notes    string          `json:"notes"`
	Priority models.Priority `json:"priority,omitempty" validate:"omitempty,priority"`
	DueDate  string          `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Service implements the task operations shared by chat, HTTP and CLI
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Store exposes the underlying store for read paths
func (s *Service) Store() Store {
	return s.store
}

// SavePage adds a new open task for the page. Priority defaults to P1 and an
// empty title falls back to the URL.
func (s *Service) SavePage(ctx context.Context, req SavePageRequest) (models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = req.URL
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	task := models.Task{
		ID:        s.newID(),
		Title:     title,
		URL:       req.URL,
		Favicon:   req.Favicon,
		Notes:     strings.TrimSpace(req.Notes),
		Priority:  priority,
		DueDate:   req.DueDate,
		Status:    models.TaskStatusOpen,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Add(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("save page: %w", err)
	}
	return task, nil
}

func (s *Service) List(ctx context.Context) ([]models.Task, error) {
	return s.store.List(ctx)
}

func (s *Service) Update(ctx context.Context, id string, update models.TaskUpdate) (models.Task, error) {
	return s.store.Update(ctx, id, update)
}

// Toggle flips a task between open and done
func (s *Service) Toggle(ctx context.Context, id string) (models.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	next := task.Status.Toggle()
	return s.store.Update(ctx, id, models.TaskUpdate{Status: &next})
}

func (s *Service) MarkDone(ctx context.Context, id string) (models.Task, error) {
	done := models.TaskStatusDone
	return s.store.Update(ctx, id, models.TaskUpdate{Status: &done})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Find lists the tasks and resolves query against them
func (s *Service) Find(ctx context.Context, query string) (models.Task, bool, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return models.Task{}, false, err
	}
	task, ok := Find(query, list)
	return task, ok, nil
}
