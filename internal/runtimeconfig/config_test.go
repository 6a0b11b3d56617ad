package runtimeconfig_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-localization/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresPathAndBaseLocale(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Path = " "
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrPathRequired) {
		t.Fatalf("expected ErrPathRequired, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.BaseLocale = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrBaseLocaleRequired) {
		t.Fatalf("expected ErrBaseLocaleRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsSlashOnlyRoute(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Route = "//"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrRouteRequired) {
		t.Fatalf("expected ErrRouteRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Format = "ini"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrFormatUnknown) {
		t.Fatalf("expected ErrFormatUnknown, got %v", err)
	}
}

func TestConfigValidate_StorageAndCache(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "postgres"
	cfg.Storage.DSN = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "mongo"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Cache.TTL = -time.Second
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheTTLInvalid) {
		t.Fatalf("expected ErrCacheTTLInvalid, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Cache.Driver = "redis"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrRedisURLRequired) {
		t.Fatalf("expected ErrRedisURLRequired, got %v", err)
	}

	cfg.Features.Overrides = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected storage checks to be skipped without overrides, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestFromEnvOverlaysValues(t *testing.T) {
	t.Setenv("LOCALIZATION_PATH", "/srv/lang")
	t.Setenv("LOCALIZATION_BASE_LOCALE", "fr")
	t.Setenv("LOCALIZATION_EXCLUDE", "validation.json, ,auth.json")
	t.Setenv("LOCALIZATION_COMMAND_TIMEOUT", "2s")
	t.Setenv("LOCALIZATION_OVERRIDES", "false")
	t.Setenv("LOCALIZATION_LOG_LEVEL", "debug")
	t.Setenv("LOCALIZATION_CACHE_TTL", "90m")

	cfg, err := runtimeconfig.FromEnv(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Path != "/srv/lang" || cfg.BaseLocale != "fr" {
		t.Fatalf("unexpected path/base: %q %q", cfg.Path, cfg.BaseLocale)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "validation.json" || cfg.Exclude[1] != "auth.json" {
		t.Fatalf("unexpected exclude list %v", cfg.Exclude)
	}
	if cfg.Commands.Timeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %v", cfg.Commands.Timeout)
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Fatalf("expected 90m cache ttl, got %v", cfg.Cache.TTL)
	}
	if cfg.Features.Overrides {
		t.Fatal("expected overrides to be disabled")
	}
	if !cfg.Features.Logger || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logger enabled at debug, got %+v %+v", cfg.Features, cfg.Logging)
	}
	if cfg.Route != "localization" {
		t.Fatalf("expected unset route to keep default, got %q", cfg.Route)
	}
}

func TestFromEnvOverridesFlag(t *testing.T) {
	base := runtimeconfig.DefaultConfig()
	base.Features.Overrides = false

	cfg, err := runtimeconfig.FromEnv(base)
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Features.Overrides {
		t.Fatal("expected unset LOCALIZATION_OVERRIDES to keep the base value")
	}

	t.Setenv("LOCALIZATION_OVERRIDES", "true")
	cfg, err = runtimeconfig.FromEnv(base)
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !cfg.Features.Overrides {
		t.Fatal("expected overrides to be enabled")
	}

	t.Setenv("LOCALIZATION_OVERRIDES", "sometimes")
	if _, err := runtimeconfig.FromEnv(base); err == nil {
		t.Fatal("expected an error for a non-boolean LOCALIZATION_OVERRIDES")
	}
}
