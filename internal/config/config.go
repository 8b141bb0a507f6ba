package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Telegram
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`
	GameURL       string `env:"TELEGRAM_GAME_URL,required,notEmpty"`

	// Webhook
	ListenAddr              string        `env:"LISTEN_ADDR" envDefault:":5000"`
	WebhookURL              string        `env:"WEBHOOK_URL"`    // e.g., https://bot.example.com/webhook
	WebhookSecret           string        `env:"WEBHOOK_SECRET"` // X-Telegram-Bot-Api-Secret-Token
	WebhookDeleteOnShutdown bool          `env:"WEBHOOK_DELETE_ON_SHUTDOWN" envDefault:"false"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DatabasePath     string        `env:"DATABASE_PATH" envDefault:"./data/gamebot.db"`
	JournalRetention time.Duration `env:"JOURNAL_RETENTION" envDefault:"48h"` // how long update IDs are kept for de-duplication

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// WebhookEnabled returns true if the bot should register its webhook on startup
func (c *Config) WebhookEnabled() bool {
	return c.WebhookURL != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateURL("TELEGRAM_GAME_URL", cfg.GameURL); err != nil {
		return nil, err
	}
	if cfg.WebhookEnabled() {
		if err := validateURL("WEBHOOK_URL", cfg.WebhookURL); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// validateURL checks that raw is an absolute http(s) URL
func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}
