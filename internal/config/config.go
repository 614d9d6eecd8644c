package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr    string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// APIToken authorizes the privileged endpoints. Empty means no caller
	// can authorize, not that everyone can.
	APIToken string `env:"API_TOKEN"`

	PGHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PGPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PGUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PGPassword string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	PGDatabase string `env:"POSTGRES_DBNAME" envDefault:"pressroom"`

	SMTPHost     string `env:"SMTP_SERVER"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"newsletter@localhost"`
}

func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase,
	)
}
