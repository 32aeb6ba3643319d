// Package tasks holds the saved-page task list: the store contract, an
// in-memory store, the task locator and the service used by the surfaces.
package tasks

import (
	"context"
	"errors"

	"github.com/benvon/focusdock/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

// Store persists tasks. List returns tasks newest first.
type Store interface {
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id string) (models.Task, error)
	Add(ctx context.Context, task models.Task) error
	Update(ctx context.Context, id string, update models.TaskUpdate) (models.Task, error)
	Delete(ctx context.Context, id string) error
}
