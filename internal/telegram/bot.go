package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/gamebot/internal/database"
	"github.com/mixelka/gamebot/internal/formatter"
	"github.com/mixelka/gamebot/internal/metrics"
	appmodels "github.com/mixelka/gamebot/pkg/models"
)

// Bot represents the Telegram bot
type Bot struct {
	bot       *bot.Bot
	db        *database.DB
	formatter *formatter.GameFormatter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	username  string // bot's own @username, from getMe
}

// BotDeps dependencies for creating a bot
type BotDeps struct {
	Token     string
	DB        *database.DB
	Formatter *formatter.GameFormatter
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// Options are passed to the underlying client after the defaults
	Options []bot.Option
}

// NewBot creates a new Telegram bot and fetches its username with getMe
func NewBot(ctx context.Context, deps BotDeps) (*Bot, error) {
	b := &Bot{
		db:        deps.DB,
		formatter: deps.Formatter,
		metrics:   deps.Metrics,
		logger:    deps.Logger.With("component", "telegram_bot"),
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		// Replies must be sent before the webhook request is acknowledged
		bot.WithNotAsyncHandlers(),
		bot.WithSkipGetMe(),
	}
	opts = append(opts, deps.Options...)

	tgBot, err := bot.New(deps.Token, opts...)
	if err != nil {
		return nil, err
	}

	meCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	me, err := tgBot.GetMe(meCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}

	b.bot = tgBot
	b.username = me.Username
	b.registerHandlers()

	return b, nil
}

// registerHandlers registers command handlers
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandlerMatchFunc(matchCommand(appmodels.CommandStart, b.username), b.handleStart)
	b.bot.RegisterHandlerMatchFunc(matchCommand(appmodels.CommandPlay, b.username), b.handlePlay)
}

// matchCommand matches text messages carrying the given command addressed to username
func matchCommand(cmd appmodels.Command, username string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		got, ok := formatter.ParseCommand(update.Message.Text, username)
		return ok && got == cmd
	}
}

// ProcessUpdate dispatches a single update to the matching handler.
// Handlers run synchronously on the caller's goroutine, so the reply has
// been sent (or has failed) when it returns.
func (b *Bot) ProcessUpdate(ctx context.Context, update *models.Update) {
	b.bot.ProcessUpdate(ctx, update)
}

// RegisterWebhook points Telegram at the bot's webhook endpoint
func (b *Bot) RegisterWebhook(ctx context.Context, url, secret string) error {
	ok, err := b.bot.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to set webhook: telegram returned false")
	}

	b.logger.Info("webhook registered", "url", url)
	return nil
}

// RemoveWebhook unregisters the webhook
func (b *Bot) RemoveWebhook(ctx context.Context) error {
	if _, err := b.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	b.logger.Info("webhook removed")
	return nil
}

// defaultHandler handles unknown messages
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	// Ignore non-message updates and messages without text
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Log unknown commands
	if update.Message.Text[0] == '/' {
		b.logger.Debug("unknown command", "text", update.Message.Text, "chat_id", update.Message.Chat.ID)
	}
}
