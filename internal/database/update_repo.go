package database

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAlreadyExists is returned when trying to insert a duplicate record
var ErrAlreadyExists = errors.New("record already exists")

// MarkUpdateProcessed records an update ID (returns ErrAlreadyExists if it was seen before)
func (db *DB) MarkUpdateProcessed(ctx context.Context, updateID, chatID int64) error {
	query := `INSERT OR IGNORE INTO processed_updates (update_id, chat_id, received_at) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query, updateID, chatID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark update processed: %w", err)
	}

	// Check if row was actually inserted (not ignored due to duplicate)
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// PruneProcessedUpdates deletes update records older than the given time
func (db *DB) PruneProcessedUpdates(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM processed_updates WHERE received_at < ?`
	result, err := db.ExecContext(ctx, query, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune processed updates: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
