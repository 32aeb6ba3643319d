package database

import (
	"context"
	"fmt"

	"github.com/benvon/focusdock/internal/chat"
	"github.com/benvon/focusdock/internal/models"
)

// ChatHistoryRepository stores the chat log, keeping the newest
// models.MaxChatHistory messages
type ChatHistoryRepository struct {
	db    *DB
	limit int
}

var _ chat.HistoryStore = (*ChatHistoryRepository)(nil)

// NewChatHistoryRepository creates a new chat history repository
func NewChatHistoryRepository(db *DB) *ChatHistoryRepository {
	return &ChatHistoryRepository{db: db, limit: models.MaxChatHistory}
}

// Append adds a message and trims the log in one transaction
func (r *ChatHistoryRepository) Append(ctx context.Context, msg models.ChatMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert := r.db.Rebind(`
		INSERT INTO chat_messages (id, position, role, content, created_at)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM chat_messages), ?, ?, ?)
	`)
	if _, err := tx.ExecContext(ctx, insert,
		msg.ID,
		string(msg.Role),
		msg.Content,
		formatTime(msg.Timestamp),
	); err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}

	trim := r.db.Rebind(`
		DELETE FROM chat_messages
		WHERE position <= (SELECT MAX(position) FROM chat_messages) - ?
	`)
	if _, err := tx.ExecContext(ctx, trim, r.limit); err != nil {
		return fmt.Errorf("failed to trim chat history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat message: %w", err)
	}
	return nil
}

// List returns the log oldest first
func (r *ChatHistoryRepository) List(ctx context.Context) ([]models.ChatMessage, error) {
	query := `SELECT id, role, content, created_at FROM chat_messages ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []models.ChatMessage
	for rows.Next() {
		var (
			msg       models.ChatMessage
			createdAt string
		)
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		ts, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		msg.Timestamp = ts
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}
	return messages, nil
}

// Clear deletes the whole log
func (r *ChatHistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}
