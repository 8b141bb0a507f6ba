package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mixelka/gamebot/pkg/models"
)

// CreateLaunch records a game link sent to a chat
func (db *DB) CreateLaunch(ctx context.Context, launch *models.Launch) error {
	query := `
		INSERT INTO game_launches (update_id, chat_id, user_id, username, command, message_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		launch.UpdateID,
		launch.ChatID,
		launch.UserID,
		launch.Username,
		launch.Command,
		launch.MessageID,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create launch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	launch.ID = id
	launch.CreatedAt = now
	return nil
}

// CountLaunches returns the number of launches for a command (all commands if empty)
func (db *DB) CountLaunches(ctx context.Context, command models.Command) (int64, error) {
	var count int64
	var err error
	if command == "" {
		err = db.GetContext(ctx, &count, `SELECT COUNT(*) FROM game_launches`)
	} else {
		err = db.GetContext(ctx, &count, `SELECT COUNT(*) FROM game_launches WHERE command = ?`, command)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count launches: %w", err)
	}
	return count, nil
}
