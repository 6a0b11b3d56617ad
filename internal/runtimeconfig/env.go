package runtimeconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// environment mirrors Config for LOCALIZATION_* variables. Unset variables
// keep the value already present on the target config.
type environment struct {
	Path       string        `env:"LOCALIZATION_PATH"`
	BaseLocale string        `env:"LOCALIZATION_BASE_LOCALE"`
	Route      string        `env:"LOCALIZATION_ROUTE"`
	Middleware []string      `env:"LOCALIZATION_MIDDLEWARE" envSeparator:","`
	Exclude    []string      `env:"LOCALIZATION_EXCLUDE" envSeparator:","`
	Format     string        `env:"LOCALIZATION_FORMAT"`
	DBDriver   string        `env:"LOCALIZATION_DB_DRIVER"`
	DBDSN      string        `env:"LOCALIZATION_DB_DSN"`
	Cache      string        `env:"LOCALIZATION_CACHE_DRIVER"`
	RedisURL   string        `env:"LOCALIZATION_REDIS_URL"`
	CacheTTL   time.Duration `env:"LOCALIZATION_CACHE_TTL"`
	LogLevel   string        `env:"LOCALIZATION_LOG_LEVEL"`
	LogFormat  string        `env:"LOCALIZATION_LOG_FORMAT"`
	LogDriver  string        `env:"LOCALIZATION_LOG_PROVIDER"`
	Timeout    time.Duration `env:"LOCALIZATION_COMMAND_TIMEOUT"`
	Overrides  *bool         `env:"LOCALIZATION_OVERRIDES"`
}

// FromEnv overlays LOCALIZATION_* environment variables onto base.
func FromEnv(base Config) (Config, error) {
	var raw environment
	if err := env.Parse(&raw); err != nil {
		return base, fmt.Errorf("localization config: parse env: %w", err)
	}
	cfg := base
	setString(&cfg.Path, raw.Path)
	setString(&cfg.BaseLocale, raw.BaseLocale)
	setString(&cfg.Route, raw.Route)
	setString(&cfg.Format, raw.Format)
	setString(&cfg.Storage.Driver, raw.DBDriver)
	setString(&cfg.Storage.DSN, raw.DBDSN)
	setString(&cfg.Cache.Driver, raw.Cache)
	setString(&cfg.Cache.RedisURL, raw.RedisURL)
	setString(&cfg.Logging.Level, raw.LogLevel)
	setString(&cfg.Logging.Format, raw.LogFormat)
	setString(&cfg.Logging.Provider, raw.LogDriver)
	if len(raw.Middleware) > 0 {
		cfg.Middleware = trimAll(raw.Middleware)
	}
	if len(raw.Exclude) > 0 {
		cfg.Exclude = trimAll(raw.Exclude)
	}
	if raw.CacheTTL > 0 {
		cfg.Cache.TTL = raw.CacheTTL
	}
	if raw.Timeout > 0 {
		cfg.Commands.Timeout = raw.Timeout
	}
	if raw.Overrides != nil {
		cfg.Features.Overrides = *raw.Overrides
	}
	if raw.LogLevel != "" || raw.LogDriver != "" {
		cfg.Features.Logger = true
	}
	return cfg, nil
}

func setString(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
