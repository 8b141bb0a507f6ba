package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// sendMessageWithKeyboard sends a plain-text message with inline keyboard
func (b *Bot) sendMessageWithKeyboard(ctx context.Context, chatID int64, topicID int, text string, keyboard *models.InlineKeyboardMarkup) (*models.Message, error) {
	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	}

	if topicID != 0 {
		params.MessageThreadID = topicID
	}

	return b.bot.SendMessage(ctx, params)
}
