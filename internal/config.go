package internal

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server needs to run, loaded from the
// environment with an optional .env file for local development.
type Config struct {
	Env      string
	LogLevel string
	Port     uint16

	DatabaseURL string
	RedisURL    string
	NatsURL     string

	// BaseURL is the public origin used to build checkout redirect URLs.
	BaseURL string

	Stripe StripeConfig
	Admin  AdminConfig

	SessionTTLHours int
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// AdminConfig seeds the initial admin account on first startup.
type AdminConfig struct {
	Email    string
	Password string
}

// LoadConfig reads configuration from the environment. A missing .env
// file is not an error; in containers everything comes from real env vars.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 8080)
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("SESSION_TTL_HOURS", 72)
	v.AutomaticEnv()

	cfg := &Config{
		Env:         v.GetString("ENV"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		Port:        v.GetUint16("PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisURL:    v.GetString("REDIS_URL"),
		NatsURL:     v.GetString("NATS_URL"),
		BaseURL:     strings.TrimRight(v.GetString("BASE_URL"), "/"),
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		SessionTTLHours: v.GetInt("SESSION_TTL_HOURS"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Stripe.SecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.Stripe.WebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.SessionTTLHours < 1 {
		return nil, fmt.Errorf("SESSION_TTL_HOURS must be at least 1")
	}

	return cfg, nil
}
