package app

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"8080"`

	DatabaseFile        string        `env:"ANCHOR_DATABASE_FILE" envDefault:"anchor.db"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// Identity provider (GoTrue-compatible).
	AuthURL        string `env:"ANCHOR_AUTH_URL,required"`
	AuthServiceKey string `env:"ANCHOR_AUTH_SERVICE_KEY,required"`

	// Frontend base URL for invite redirect links.
	FrontendURL string `env:"ANCHOR_FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Transactional email API.
	EmailAPIURL string `env:"EMAIL_API_URL" envDefault:"https://api.resend.com"`
	EmailAPIKey string `env:"EMAIL_API_KEY"`
	EmailFrom   string `env:"EMAIL_FROM" envDefault:"Anchor <digest@anchorhq.io>"`

	// Daily digest schedule.
	DigestHour     int    `env:"DIGEST_HOUR" envDefault:"8"`
	DigestTimezone string `env:"DIGEST_TIMEZONE" envDefault:"America/Toronto"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
