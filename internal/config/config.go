package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Backend
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	WSURL      string `env:"WS_URL" envDefault:"ws://localhost:8000/frontend/ws"`

	// Service credentials used when no token is stored
	AuthUsername string `env:"AUTH_USERNAME"`
	AuthPassword string `env:"AUTH_PASSWORD"`

	// Credential storage: memory, file or postgres
	CredentialStore string `env:"CREDENTIAL_STORE" envDefault:"file"`
	CredentialFile  string `env:"CREDENTIAL_FILE" envDefault:".lawco/credentials.json"`
	DatabaseURL     string `env:"DATABASE_URL"`

	// Network policy
	HTTPTimeout       time.Duration `env:"HTTP_TIMEOUT" envDefault:"90s"`
	ReconnectAttempts int           `env:"RECONNECT_ATTEMPTS" envDefault:"3"`
	ReconnectBackoff  time.Duration `env:"RECONNECT_BACKOFF" envDefault:"1s"`
	TypingTimeout     time.Duration `env:"TYPING_TIMEOUT" envDefault:"0s"`

	// Attachments
	PreviewDir string `env:"PREVIEW_DIR"`

	// Telegram front-end
	BotToken           string `env:"BOT_TOKEN"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	DropPendingUpdates bool   `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CredentialStore {
	case StoreMemory, StoreFile:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("validate config: DATABASE_URL is required for the postgres credential store")
		}
	default:
		return fmt.Errorf("validate config: unknown CREDENTIAL_STORE %q", c.CredentialStore)
	}
	if c.ReconnectAttempts < 0 {
		return fmt.Errorf("validate config: RECONNECT_ATTEMPTS must not be negative")
	}
	return nil
}

// HasCredentials reports whether auto-login can be attempted.
func (c *Config) HasCredentials() bool {
	return c.AuthUsername != "" && c.AuthPassword != ""
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
