package chat

import (
	"context"
	"slices"
	"sync"

	"github.com/benvon/focusdock/internal/models"
)

// HistoryStore keeps the chat log. Append drops the oldest entries beyond
// models.MaxChatHistory.
type HistoryStore interface {
	Append(ctx context.Context, msg models.ChatMessage) error
	List(ctx context.Context) ([]models.ChatMessage, error)
	Clear(ctx context.Context) error
}

// MemoryHistory is an in-process HistoryStore
type MemoryHistory struct {
	mu       sync.RWMutex
	messages []models.ChatMessage
}

var _ HistoryStore = (*MemoryHistory)(nil)

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (h *MemoryHistory) Append(_ context.Context, msg models.ChatMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
	if over := len(h.messages) - models.MaxChatHistory; over > 0 {
		h.messages = slices.Clone(h.messages[over:])
	}
	return nil
}

func (h *MemoryHistory) List(_ context.Context) ([]models.ChatMessage, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.messages), nil
}

func (h *MemoryHistory) Clear(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
	return nil
}
