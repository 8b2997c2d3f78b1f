package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yuchinlin/line-gemini-bot/internal/model/chat"
)

// HistoryStore is the sqlite-backed conversation log. One row per exchange:
// the user message and the bot reply are stored together.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore wraps an open database handle. Call Init before first use.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Init creates the history schema if it does not exist yet. Safe to call at
// every process start.
func (s *HistoryStore) Init(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		user_text TEXT NOT NULL,
		bot_text TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);`

	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_history_user_id ON history (user_id);`

	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("failed to create history user index: %w", err)
	}
	return nil
}

// Append inserts one exchange for the user. The timestamp is assigned here,
// in UTC, never by the caller.
func (s *HistoryStore) Append(ctx context.Context, userID, userText, botText string) error {
	insertSQL := `
	INSERT INTO history (user_id, user_text, bot_text, timestamp)
	VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, insertSQL, userID, userText, botText, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert exchange for user %s: %w", userID, err)
	}
	return nil
}

// List returns every stored exchange for the user, oldest first. A user with
// no history yields an empty slice, not an error.
func (s *HistoryStore) List(ctx context.Context, userID string) ([]chat.Exchange, error) {
	querySQL := `
	SELECT id, user_id, user_text, bot_text, timestamp
	FROM history
	WHERE user_id = ?
	ORDER BY timestamp ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, querySQL, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for user %s: %w", userID, err)
	}
	defer rows.Close()

	exchanges := []chat.Exchange{}
	for rows.Next() {
		var ex chat.Exchange
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.UserText, &ex.BotText, &ex.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return exchanges, nil
}

// Clear deletes all exchanges for the user. Clearing a user with no history
// succeeds as a no-op.
func (s *HistoryStore) Clear(ctx context.Context, userID string) error {
	deleteSQL := `DELETE FROM history WHERE user_id = ?`

	if _, err := s.db.ExecContext(ctx, deleteSQL, userID); err != nil {
		return fmt.Errorf("failed to delete history for user %s: %w", userID, err)
	}
	return nil
}
