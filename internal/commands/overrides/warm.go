package overridescmd

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-localization/internal/commands"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

const warmCacheMessageType = "localization.overrides.cache.warm"

// CacheWarmer loads the override set of a locale through the cache.
type CacheWarmer interface {
	Locales(ctx context.Context) ([]string, error)
	LocaleOverrides(ctx context.Context, locale string) (map[string]string, error)
}

// WarmOverrideCacheCommand populates the override cache for Locales, or for
// every known locale when Locales is empty.
type WarmOverrideCacheCommand struct {
	Locales []string `json:"locales,omitempty"`
}

// Type implements command.Message.
func (WarmOverrideCacheCommand) Type() string { return warmCacheMessageType }

// Validate rejects blank locale entries.
func (m WarmOverrideCacheCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Locales, validation.Each(validation.Required)),
	)
}

// WarmOverrideCacheHandler preloads cached overrides.
type WarmOverrideCacheHandler struct {
	inner *commands.Handler[WarmOverrideCacheCommand]
}

// NewWarmOverrideCacheHandler constructs a handler bound to warmer.
func NewWarmOverrideCacheHandler(warmer CacheWarmer, logger interfaces.Logger, opts ...commands.HandlerOption[WarmOverrideCacheCommand]) *WarmOverrideCacheHandler {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg WarmOverrideCacheCommand) error {
		locales := trimLocales(msg.Locales)
		if len(locales) == 0 {
			known, err := warmer.Locales(ctx)
			if err != nil {
				return err
			}
			locales = known
		}
		var errs []error
		for _, locale := range locales {
			values, err := warmer.LocaleOverrides(ctx, locale)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			logger.Debug("overrides.cache.warmed", "locale", locale, "count", len(values))
		}
		return errors.Join(errs...)
	}
	handlerOpts := []commands.HandlerOption[WarmOverrideCacheCommand]{
		commands.WithLogger[WarmOverrideCacheCommand](logger),
		commands.WithOperation[WarmOverrideCacheCommand]("overrides.cache.warm"),
	}
	return &WarmOverrideCacheHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[WarmOverrideCacheCommand].
func (h *WarmOverrideCacheHandler) Execute(ctx context.Context, msg WarmOverrideCacheCommand) error {
	return h.inner.Execute(ctx, msg)
}
