package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"BlueCarbon"`
		Port      int    `envconfig:"PORT" default:"8080"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
		SeedDemo  bool   `envconfig:"SEED_DEMO" default:"false"`
	}

	Store struct {
		// Backend is "memory" or "postgres".
		Backend string `envconfig:"STORE_BACKEND" default:"memory"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"bluecarbon"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Auth struct {
		SigningKey string        `envconfig:"AUTH_SIGNING_KEY"`
		Issuer     string        `envconfig:"AUTH_ISSUER" default:"bluecarbon"`
		TokenTTL   time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"8h"`
		DemoLogin  bool          `envconfig:"AUTH_DEMO_LOGIN" default:"false"`
	}

	Verify struct {
		MaxAge         time.Duration   `envconfig:"VERIFY_MAX_AGE" default:"8760h"`
		MaxCarbonValue decimal.Decimal `envconfig:"VERIFY_MAX_CARBON_VALUE" default:"100000"`
	}
}

// demoSigningKey is public. It is only used with AUTH_DEMO_LOGIN.
const demoSigningKey = "bluecarbon-demo-signing-key"

var ErrNoSigningKey = errors.New("AUTH_SIGNING_KEY is required unless AUTH_DEMO_LOGIN is enabled")

// TokenSigningKey returns the key access tokens are signed with. Without
// AUTH_SIGNING_KEY the API only runs in demo mode, on the public demo key.
func (c *Config) TokenSigningKey() (string, error) {
	if c.Auth.SigningKey != "" {
		return c.Auth.SigningKey, nil
	}

	if !c.Auth.DemoLogin {
		return "", ErrNoSigningKey
	}

	slog.Warn("AUTH_SIGNING_KEY is not set, signing tokens with the public demo key: anyone can mint tokens for this server")

	return demoSigningKey, nil
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.App.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Store.Backend {
	case "memory", "postgres":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}

	return &cfg, nil
}
