package database

import (
	"context"
	"log/slog"
	"time"
)

// RunJanitor prunes processed updates older than retention every interval
// until ctx is cancelled. Telegram stops redelivering an update after 24h.
func (db *DB) RunJanitor(ctx context.Context, retention, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.PruneProcessedUpdates(ctx, time.Now().Add(-retention))
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("failed to prune processed updates", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("pruned processed updates", "count", n)
			}
		}
	}
}
