package localization

import "github.com/goliatone/go-localization/internal/runtimeconfig"

var (
	ErrPathRequired            = runtimeconfig.ErrPathRequired
	ErrBaseLocaleRequired      = runtimeconfig.ErrBaseLocaleRequired
	ErrRouteRequired           = runtimeconfig.ErrRouteRequired
	ErrFormatUnknown           = runtimeconfig.ErrFormatUnknown
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrCacheDriverUnknown      = runtimeconfig.ErrCacheDriverUnknown
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrRedisURLRequired        = runtimeconfig.ErrRedisURLRequired
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrCommandTimeoutInvalid   = runtimeconfig.ErrCommandTimeoutInvalid
)

type (
	Config         = runtimeconfig.Config
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	Features       = runtimeconfig.Features
	CommandsConfig = runtimeconfig.CommandsConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ConfigFromEnv overlays LOCALIZATION_* environment variables on base.
func ConfigFromEnv(base Config) (Config, error) {
	return runtimeconfig.FromEnv(base)
}
