package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/tasks"
)

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

var _ tasks.Store = (*TaskRepository)(nil)

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, url, favicon, notes, priority, due_date, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		task      models.Task
		createdAt string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.URL,
		&task.Favicon,
		&task.Notes,
		&task.Priority,
		&task.DueDate,
		&task.Status,
		&createdAt,
	); err != nil {
		return models.Task{}, err
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return models.Task{}, err
	}
	task.CreatedAt = t
	return task, nil
}

// List returns every task, most recently added first
func (r *TaskRepository) List(ctx context.Context) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY position DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	list := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		list = append(list, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return list, nil
}

// Get retrieves a task by ID
func (r *TaskRepository) Get(ctx context.Context, id string) (models.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, tasks.ErrTaskNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Add stores a new task at the head of the list
func (r *TaskRepository) Add(ctx context.Context, task models.Task) error {
	query := r.db.Rebind(`
		INSERT INTO tasks (id, position, title, url, favicon, notes, priority, due_date, status, created_at)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks), ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	if _, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.URL,
		task.Favicon,
		task.Notes,
		string(task.Priority),
		task.DueDate,
		string(task.Status),
		formatTime(task.CreatedAt),
	); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Update applies a partial update and returns the stored result
func (r *TaskRepository) Update(ctx context.Context, id string, update models.TaskUpdate) (models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	selectQuery := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	current, err := scanTask(tx.QueryRowContext(ctx, selectQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, tasks.ErrTaskNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to get task: %w", err)
	}

	updated := update.Apply(current)
	updateQuery := r.db.Rebind(`
		UPDATE tasks
		SET title = ?, notes = ?, priority = ?, due_date = ?, status = ?
		WHERE id = ?
	`)
	if _, err := tx.ExecContext(ctx, updateQuery,
		updated.Title,
		updated.Notes,
		string(updated.Priority),
		updated.DueDate,
		string(updated.Status),
		id,
	); err != nil {
		return models.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Task{}, fmt.Errorf("failed to commit task update: %w", err)
	}
	return updated, nil
}

// Delete removes a task
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM tasks WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, tasks.ErrTaskNotFound)
	}
	return nil
}
