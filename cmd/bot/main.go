package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mixelka/gamebot/internal/config"
	"github.com/mixelka/gamebot/internal/database"
	"github.com/mixelka/gamebot/internal/formatter"
	"github.com/mixelka/gamebot/internal/metrics"
	"github.com/mixelka/gamebot/internal/server"
	"github.com/mixelka/gamebot/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting game launcher bot", "game_url", cfg.GameURL)

	// Connect to database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	// Create components
	m := metrics.New()
	m.TrackLaunches(db, logger.With("component", "metrics"))
	gameFormatter := formatter.NewGameFormatter(cfg.GameURL)

	// Create bot
	bot, err := telegram.NewBot(ctx, telegram.BotDeps{
		Token:     cfg.TelegramToken,
		DB:        db,
		Formatter: gameFormatter,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Register webhook with Telegram (optional)
	if cfg.WebhookEnabled() {
		if err := bot.RegisterWebhook(ctx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			logger.Error("failed to register webhook", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("WEBHOOK_URL not set, expecting the webhook to be registered externally")
	}

	srv := server.New(server.Deps{
		Addr:            cfg.ListenAddr,
		WebhookSecret:   cfg.WebhookSecret,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Processor:       bot,
		Journal:         db,
		Metrics:         m,
		Logger:          logger,
	})

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		logger.Info("shutting down...")
		cancel()
	}()

	go db.RunJanitor(ctx, cfg.JournalRetention, time.Hour, logger.With("component", "journal_janitor"))

	// Start server
	logger.Info("bot is running, press Ctrl+C to stop")
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", "error", err)
	}

	if cfg.WebhookEnabled() && cfg.WebhookDeleteOnShutdown {
		removeCtx, removeCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := bot.RemoveWebhook(removeCtx); err != nil {
			logger.Error("failed to remove webhook", "error", err)
		}
		removeCancel()
	}

	logger.Info("bot stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
			NoColor:    false,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
