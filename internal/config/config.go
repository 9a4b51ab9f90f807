// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers accepted by SCOUNDREL_STORE.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds every tunable of the service.
type Config struct {
	Addr            string        `env:"SCOUNDREL_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SCOUNDREL_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Store       string `env:"SCOUNDREL_STORE" envDefault:"memory"`
	DataDir     string `env:"SCOUNDREL_DATA_DIR" envDefault:"./data"`
	RedisURL    string `env:"SCOUNDREL_REDIS_URL"`
	PostgresDSN string `env:"SCOUNDREL_POSTGRES_DSN"`
	SQLitePath  string `env:"SCOUNDREL_SQLITE_PATH" envDefault:"./data/scoundrel.db"`

	JWTSecret string        `env:"SCOUNDREL_JWT_SECRET"`
	TokenTTL  time.Duration `env:"SCOUNDREL_TOKEN_TTL" envDefault:"720h"`

	LogLevel  string `env:"SCOUNDREL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SCOUNDREL_LOG_FORMAT" envDefault:"text"`

	// SessionIdleTTL is how long an unused session stays in memory. 0 disables eviction.
	SessionIdleTTL time.Duration `env:"SCOUNDREL_SESSION_IDLE_TTL" envDefault:"30m"`
	SessionSweep   time.Duration `env:"SCOUNDREL_SESSION_SWEEP" envDefault:"1m"`

	// Seed fixes the shuffle seed of every new session. 0 draws a random seed.
	Seed uint64 `env:"SCOUNDREL_SEED" envDefault:"0"`
}

// Load reads an optional .env file (or the files named in envFiles) and then
// parses the environment into a validated Config.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver-specific requirements.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("SCOUNDREL_JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("SCOUNDREL_TOKEN_TTL must be positive")
	}
	if c.SessionIdleTTL < 0 {
		return errors.New("SCOUNDREL_SESSION_IDLE_TTL must not be negative")
	}
	if c.SessionIdleTTL > 0 && c.SessionSweep <= 0 {
		return errors.New("SCOUNDREL_SESSION_SWEEP must be positive when sessions expire")
	}
	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if strings.TrimSpace(c.DataDir) == "" {
			return errors.New("SCOUNDREL_DATA_DIR is required for the file store")
		}
	case StoreRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return errors.New("SCOUNDREL_REDIS_URL is required for the redis store")
		}
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("SCOUNDREL_POSTGRES_DSN is required for the postgres store")
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("SCOUNDREL_SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store)
	}
	return nil
}
