package overridescmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-localization/internal/commands"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

const invalidateCacheMessageType = "localization.overrides.cache.invalidate"

// CacheClearer drops cached override sets.
type CacheClearer interface {
	ClearCache(ctx context.Context, locales ...string) error
}

// InvalidateOverrideCacheCommand drops the cached overrides of Locales, or
// of every locale when Locales is empty.
type InvalidateOverrideCacheCommand struct {
	Locales []string `json:"locales,omitempty"`
}

// Type implements command.Message.
func (InvalidateOverrideCacheCommand) Type() string { return invalidateCacheMessageType }

// Validate rejects blank locale entries.
func (m InvalidateOverrideCacheCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Locales, validation.Each(validation.Required, validation.Length(1, 35))),
	)
}

// InvalidateOverrideCacheHandler clears the override cache through the shared
// command handler.
type InvalidateOverrideCacheHandler struct {
	inner *commands.Handler[InvalidateOverrideCacheCommand]
}

// NewInvalidateOverrideCacheHandler constructs a handler bound to clearer.
func NewInvalidateOverrideCacheHandler(clearer CacheClearer, logger interfaces.Logger, opts ...commands.HandlerOption[InvalidateOverrideCacheCommand]) *InvalidateOverrideCacheHandler {
	exec := func(ctx context.Context, msg InvalidateOverrideCacheCommand) error {
		return clearer.ClearCache(ctx, trimLocales(msg.Locales)...)
	}
	handlerOpts := []commands.HandlerOption[InvalidateOverrideCacheCommand]{
		commands.WithLogger[InvalidateOverrideCacheCommand](logger),
		commands.WithOperation[InvalidateOverrideCacheCommand]("overrides.cache.invalidate"),
	}
	return &InvalidateOverrideCacheHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[InvalidateOverrideCacheCommand].
func (h *InvalidateOverrideCacheHandler) Execute(ctx context.Context, msg InvalidateOverrideCacheCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CLIHandler exposes the handler to CLI integrations.
func (h *InvalidateOverrideCacheHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata of the handler.
func (h *InvalidateOverrideCacheHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"cache", "clear"},
		Group:       "overrides",
		Description: "Drop cached translation overrides for some or all locales",
	}
}

func trimLocales(locales []string) []string {
	out := make([]string, 0, len(locales))
	for _, locale := range locales {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
