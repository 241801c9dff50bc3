package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/procura/internal/database"
)

type Config struct {
	API struct {
		URL     string        `envconfig:"PROCURA_API_URL" default:"http://localhost:8080"`
		Token   string        `envconfig:"PROCURA_API_TOKEN"`
		Timeout time.Duration `envconfig:"PROCURA_API_TIMEOUT" default:"30s"`
	}

	Cache struct {
		Size int           `envconfig:"PROCURA_CACHE_SIZE" default:"512"`
		TTL  time.Duration `envconfig:"PROCURA_CACHE_TTL" default:"5m"`
	}

	UI struct {
		NotifyInterval time.Duration `envconfig:"PROCURA_NOTIFY_INTERVAL" default:"30s"`
		SearchDebounce time.Duration `envconfig:"PROCURA_SEARCH_DEBOUNCE" default:"300ms"`
		ExportDir      string        `envconfig:"PROCURA_EXPORT_DIR" default:"./exports"`
	}

	Drafts struct {
		Driver string `envconfig:"PROCURA_DRAFTS_DRIVER" default:"sqlite"`
		DSN    string `envconfig:"PROCURA_DRAFTS_DSN"`
	}

	Log struct {
		File  string `envconfig:"PROCURA_LOG_FILE" default:"procura.log"`
		Level string `envconfig:"PROCURA_LOG_LEVEL" default:"info"`
	}
}

// DraftsDSN returns the configured DSN, or ~/.procura/drafts.db when SQLite
// is used without one.
func (c *Config) DraftsDSN() string {
	if c.Drafts.DSN == "" && c.Drafts.Driver == database.DriverSQLite {
		return database.DefaultSQLitePath()
	}

	return c.Drafts.DSN
}

func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return slog.LevelInfo
	}

	return lvl
}

func (c *Config) validate() error {
	switch c.Drafts.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("PROCURA_DRAFTS_DRIVER must be %q or %q, got %q", database.DriverSQLite, database.DriverPostgres, c.Drafts.Driver)
	}

	if c.Drafts.Driver == database.DriverPostgres && c.Drafts.DSN == "" {
		return fmt.Errorf("PROCURA_DRAFTS_DSN is required for %s", database.DriverPostgres)
	}

	if c.API.URL == "" {
		return fmt.Errorf("PROCURA_API_URL is required")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
