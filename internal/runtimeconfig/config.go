package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var ErrPathRequired = errors.New("localization config: translation path is required")
var ErrBaseLocaleRequired = errors.New("localization config: base locale is required")
var ErrRouteRequired = errors.New("localization config: route prefix is required")
var ErrFormatUnknown = errors.New("localization config: translation file format is invalid")
var ErrStorageDriverUnknown = errors.New("localization config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("localization config: storage dsn is required for the postgres driver")

// ErrCacheTTLInvalid is returned when the override cache TTL is negative.
var ErrCacheTTLInvalid = errors.New("localization config: cache ttl must not be negative")

// ErrCacheDriverUnknown is returned when the override cache driver is neither memory nor redis.
var ErrCacheDriverUnknown = errors.New("localization config: cache driver is invalid")

// ErrRedisURLRequired ensures the redis cache is only selected with a connection url.
var ErrRedisURLRequired = errors.New("localization config: redis url is required when the redis cache driver is selected")

var ErrLoggingProviderRequired = errors.New("localization config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("localization config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("localization config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("localization config: logging format is invalid")
var ErrCommandTimeoutInvalid = errors.New("localization config: command timeout must be zero or positive")

// Config aggregates the settings of the localization admin module.
type Config struct {
	// Path is the directory holding one subdirectory per locale.
	Path string
	// BaseLocale is the authoritative locale whose files define the key set.
	BaseLocale string
	// Route is the URL prefix the admin endpoints are mounted under.
	Route string
	// Middleware names the registered middleware wrapped around every route.
	Middleware []string
	// Exclude lists base file names hidden from the editor.
	Exclude []string
	// Format selects the translation file codec: json, yaml or toml.
	Format   string
	Storage  StorageConfig
	Cache    CacheConfig
	Features Features
	Commands CommandsConfig
	Logging  LoggingConfig
}

// StorageConfig selects the database holding override translations.
type StorageConfig struct {
	Driver string
	DSN    string
}

// CacheConfig selects the per-locale override cache backend.
type CacheConfig struct {
	Driver   string
	RedisURL string
	Prefix   string
	// TTL bounds the lifetime of in-memory entries. Zero uses the cache default.
	TTL time.Duration
}

// Features toggles optional module functionality.
type Features struct {
	Overrides bool
	Logger    bool
}

// CommandsConfig captures command-layer behaviour.
type CommandsConfig struct {
	Timeout time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns defaults suitable for a single process deployment
// reading JSON files from ./lang.
func DefaultConfig() Config {
	return Config{
		Path:       "lang",
		BaseLocale: "en",
		Route:      "localization",
		Middleware: []string{},
		Exclude:    []string{},
		Format:     "json",
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file:localization.db?cache=shared&_fk=1",
		},
		Cache: CacheConfig{
			Driver: "memory",
			Prefix: "override_translations",
			TTL:    24 * time.Hour,
		},
		Features: Features{
			Overrides: true,
		},
		Commands: CommandsConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Path) == "" {
		return ErrPathRequired
	}
	if strings.TrimSpace(cfg.BaseLocale) == "" {
		return ErrBaseLocaleRequired
	}
	if strings.Trim(strings.TrimSpace(cfg.Route), "/") == "" {
		return ErrRouteRequired
	}
	if format := normalize(cfg.Format); format != "" && !slices.Contains(SupportedFormats(), format) {
		return fmt.Errorf("%w: %s", ErrFormatUnknown, cfg.Format)
	}
	if cfg.Features.Overrides {
		switch normalize(cfg.Storage.Driver) {
		case "sqlite", "sqlite3":
		case "postgres", "postgresql":
			if strings.TrimSpace(cfg.Storage.DSN) == "" {
				return ErrStorageDSNRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if cfg.Cache.TTL < 0 {
			return ErrCacheTTLInvalid
		}
		switch normalize(cfg.Cache.Driver) {
		case "", "memory":
		case "redis":
			if strings.TrimSpace(cfg.Cache.RedisURL) == "" {
				return ErrRedisURLRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrCacheDriverUnknown, cfg.Cache.Driver)
		}
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// SupportedFormats lists the translation file codecs known to the module.
func SupportedFormats() []string {
	return []string{"json", "yaml", "toml"}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
