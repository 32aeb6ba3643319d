package tasks

import (
	"context"
	"slices"
	"sync"

	"github.com/benvon/focusdock/internal/models"
)

// MemoryStore keeps tasks in process, newest first
type MemoryStore struct {
	mu    sync.RWMutex
	tasks []models.Task
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List(_ context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.tasks), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}
	return s.tasks[i], nil
}

func (s *MemoryStore) Add(_ context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append([]models.Task{task}, s.tasks...)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, id string, update models.TaskUpdate) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}
	s.tasks[i] = update.Apply(s.tasks[i])
	return s.tasks[i], nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return nil
}

// indexOf must be called with mu held
func (s *MemoryStore) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}
