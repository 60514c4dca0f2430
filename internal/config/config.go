package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/finanzas/internal/api"
	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/session"
	"github.com/spf13/viper"
)

// Session storage backends.
const (
	SessionFile   = "file"
	SessionSQLite = "sqlite"
)

// EnvPrefix is prepended to every environment override, e.g. FINANZAS_BACKEND_BASE_URL.
const EnvPrefix = "FINANZAS"

// Config is the resolved application configuration.
type Config struct {
	Logging common.LogOptions
	Session SessionConfig
	Backend api.Config
	Import  ImportConfig
}

// SessionConfig selects where the session is persisted.
type SessionConfig struct {
	Backend string
	Path    string
}

// ImportConfig controls statement imports.
type ImportConfig struct {
	// Rate is the number of create requests per second; 0 means unlimited.
	Rate float64
	// CategoryID is assigned to imported movements unless overridden per run.
	CategoryID int64
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	def := api.DefaultConfig()
	v.SetDefault("backend.base_url", def.BaseURL)
	v.SetDefault("backend.timeout", def.Timeout)
	v.SetDefault("backend.health_timeout", def.HealthTimeout)

	v.SetDefault("session.backend", SessionFile)
	v.SetDefault("session.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)

	v.SetDefault("import.rate", 5.0)
	v.SetDefault("import.category_id", 0)
}

// BindEnv makes every key overridable through FINANZAS_-prefixed variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Backend: api.Config{
			BaseURL:       v.GetString("backend.base_url"),
			Timeout:       v.GetDuration("backend.timeout"),
			HealthTimeout: v.GetDuration("backend.health_timeout"),
			UserAgent:     "finanzas",
		},
		Session: SessionConfig{
			Backend: v.GetString("session.backend"),
			Path:    ExpandPath(v.GetString("session.path")),
		},
		Logging: common.LogOptions{
			Level:      v.GetString("logging.level"),
			Format:     v.GetString("logging.format"),
			File:       ExpandPath(v.GetString("logging.file")),
			MaxSizeMB:  v.GetInt("logging.max_size_mb"),
			MaxBackups: v.GetInt("logging.max_backups"),
			MaxAgeDays: v.GetInt("logging.max_age_days"),
		},
		Import: ImportConfig{
			Rate:       v.GetFloat64("import.rate"),
			CategoryID: v.GetInt64("import.category_id"),
		},
	}

	if cfg.Session.Path == "" {
		dir, err := session.DefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		cfg.Session.Path = filepath.Join(dir, defaultSessionFile(cfg.Session.Backend))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if err := c.Backend.Validate(); err != nil {
		return err
	}
	if c.Backend.Timeout == 0 || c.Backend.HealthTimeout == 0 {
		return fmt.Errorf("%w: timeouts must be positive", common.ErrInvalidConfig)
	}

	switch c.Session.Backend {
	case SessionFile, SessionSQLite:
	default:
		return fmt.Errorf("%w: unknown session backend %q (want %s or %s)",
			common.ErrInvalidConfig, c.Session.Backend, SessionFile, SessionSQLite)
	}

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: invalid log format %q", common.ErrInvalidConfig, c.Logging.Format)
	}

	if c.Import.Rate < 0 {
		return fmt.Errorf("%w: import rate cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

func defaultSessionFile(backend string) string {
	if backend == SessionSQLite {
		return "session.db"
	}
	return "session.json"
}

// durationOr returns d, or def when d is not positive.
func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
