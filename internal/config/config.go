package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from the environment.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	Debug   bool   `env:"DEBUG" envDefault:"false"`
	Version string `env:"VERSION" envDefault:"dev"`

	BotToken  string `env:"TELEGRAM_BOT_TOKEN,required"`
	SentryDSN string `env:"SENTRY_DSN"`

	// AdminIDs is the static allow-list of admin user IDs.
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// AnnouncementsChannel is where approved announcements are published.
	// Either a @username or a -100... supergroup ID.
	AnnouncementsChannel string `env:"ANNOUNCEMENTS_CHANNEL,required"`

	MaxPinnedPosts int `env:"MAX_PINNED_POSTS" envDefault:"3"`

	DatabaseURL string `env:"DATABASE_URL,required"`
}

// Load reads configuration from the environment. A .env file is loaded if
// present but real environment variables take priority (e.g. under Docker).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if len(cfg.AdminIDs) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS is required")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}

	return cfg, nil
}

// IsAdminID reports whether the given user ID is on the admin allow-list.
func (c *Config) IsAdminID(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
