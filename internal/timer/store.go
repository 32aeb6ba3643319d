package timer

import (
	"context"
	"sync"

	"github.com/benvon/focusdock/internal/models"
)

// StateStore is a single slot holding the last persisted timer state
type StateStore interface {
	Load(ctx context.Context) (models.TimerState, bool, error)
	Save(ctx context.Context, state models.TimerState) error
	Clear(ctx context.Context) error
}

// MemoryStore is a process-local StateStore
type MemoryStore struct {
	mu    sync.Mutex
	state *models.TimerState
}

var _ StateStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (models.TimerState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return models.TimerState{}, false, nil
	}
	return *s.state, true, nil
}

func (s *MemoryStore) Save(_ context.Context, state models.TimerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = &state
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = nil
	return nil
}
