package models

import "time"

// Launch represents a game link sent in reply to a command
type Launch struct {
	ID        int64     `db:"id"`
	UpdateID  int64     `db:"update_id"` // Telegram update_id that triggered the reply
	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Command   Command   `db:"command"`
	MessageID int       `db:"message_id"` // Telegram ID of the reply message
	CreatedAt time.Time `db:"created_at"`
}
