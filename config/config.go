package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read once at startup and handed to constructors; nothing reads
// the environment after Load returns.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"pos.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"pos_dev_secret_change_me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	UploadDir      string   `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadMaxBytes int64    `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
	PublicBaseURL  string   `env:"PUBLIC_BASE_URL"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"pos.orders"`

	OrderCodeAttempts int           `env:"ORDER_CODE_ATTEMPTS" envDefault:"3"`
	OrderCodeBackoff  time.Duration `env:"ORDER_CODE_BACKOFF" envDefault:"20ms"`
	WalkInName        string        `env:"WALK_IN_CUSTOMER_NAME" envDefault:"Walk-in customer"`
	Timezone          string        `env:"POS_TIMEZONE" envDefault:"Local"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	SeedDemoData  bool   `env:"SEED_DEMO_DATA" envDefault:"false"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load parses the environment into a Config and checks the values that
// would otherwise fail later at first use.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.OrderCodeAttempts < 1 {
		return nil, fmt.Errorf("ORDER_CODE_ATTEMPTS must be at least 1, got %d", cfg.OrderCodeAttempts)
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", cfg.UploadMaxBytes)
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location is the time zone business days are counted in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("POS_TIMEZONE: %w", err)
	}
	return loc, nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.LogFormat) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
