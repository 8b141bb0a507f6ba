package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/gamebot/internal/metrics"
	appmodels "github.com/mixelka/gamebot/pkg/models"
)

// handleStart handles /start command
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCommand(ctx, update, appmodels.CommandStart)
}

// handlePlay handles /play command
func (b *Bot) handlePlay(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCommand(ctx, update, appmodels.CommandPlay)
}

func (b *Bot) handleCommand(ctx context.Context, update *models.Update, cmd appmodels.Command) {
	msg := update.Message

	sent, err := b.respond(ctx, msg, cmd)
	if err != nil {
		b.metrics.ObserveReply(string(cmd), metrics.StatusFailed)
		b.logger.Error("failed to send game link",
			"error", err,
			"command", cmd,
			"chat_id", msg.Chat.ID,
		)
		return
	}
	b.metrics.ObserveReply(string(cmd), metrics.StatusSent)

	launch := &appmodels.Launch{
		UpdateID:  update.ID,
		ChatID:    msg.Chat.ID,
		Command:   cmd,
		MessageID: sent.ID,
	}
	if msg.From != nil {
		launch.UserID = msg.From.ID
		launch.Username = msg.From.Username
	}
	if err := b.db.CreateLaunch(ctx, launch); err != nil {
		b.logger.Error("failed to record launch", "error", err)
	}

	b.logger.Info("game link sent",
		"command", cmd,
		"chat_id", msg.Chat.ID,
		"telegram_msg_id", sent.ID,
	)
}

// respond sends the game link for cmd; client errors are returned as is
func (b *Bot) respond(ctx context.Context, msg *models.Message, cmd appmodels.Command) (*models.Message, error) {
	reply, err := b.formatter.Reply(cmd)
	if err != nil {
		return nil, fmt.Errorf("build reply for %q: %w", cmd, err)
	}
	return b.sendMessageWithKeyboard(ctx, msg.Chat.ID, msg.MessageThreadID, reply.Text, reply.Keyboard)
}
