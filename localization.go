package localization

import (
	"context"
	"net/http"

	overridescmd "github.com/goliatone/go-localization/internal/commands/overrides"
	"github.com/goliatone/go-localization/internal/di"
	"github.com/goliatone/go-localization/internal/editor"
	adminhttp "github.com/goliatone/go-localization/internal/http"
	"github.com/goliatone/go-localization/internal/langfiles"
	"github.com/goliatone/go-localization/internal/overrides"
	"github.com/goliatone/go-localization/internal/translator"
)

// EditorService exports the file editor used by the admin routes.
type EditorService = *editor.Service

// OverrideService exports the database override service.
type OverrideService = *overrides.Service

// Override exports the persisted override record.
type Override = overrides.Override

// OverrideInput exports one entry of an override store request.
type OverrideInput = overrides.Input

// Translator exports the request scoped translator.
type Translator = translator.Translator

// Middleware wraps an admin route handler.
type Middleware = adminhttp.Middleware

// CommandHandlers exports the override cache command handlers.
type CommandHandlers = overridescmd.HandlerSet

// InvalidateCacheCommand drops cached overrides for the listed locales.
type InvalidateCacheCommand = overridescmd.InvalidateOverrideCacheCommand

// WarmCacheCommand preloads cached overrides for the listed locales.
type WarmCacheCommand = overridescmd.WarmOverrideCacheCommand

// Option customises the container built by New.
type Option = di.Option

var (
	WithLoggerProvider     = di.WithLoggerProvider
	WithBunDB              = di.WithBunDB
	WithOverrideRepository = di.WithOverrideRepository
	WithOverrideCache      = di.WithOverrideCache
	WithCacheService       = di.WithCacheService
	WithRedisClient        = di.WithRedisClient
	WithAuditRecorder      = di.WithAuditRecorder
	WithInvalidationHook   = di.WithInvalidationHook
	WithMiddleware         = di.WithMiddleware
	WithCommandRegistry    = di.WithCommandRegistry
)

// Module is the top level localization admin façade.
type Module struct {
	container *di.Container
}

// New builds a module from cfg. The caller owns Close.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Register mounts the admin routes on mux under the configured route prefix.
func (m *Module) Register(mux *http.ServeMux) error {
	return m.container.AdminAPI().Register(mux)
}

// Handler returns a mux serving only the admin routes.
func (m *Module) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := m.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

// Middleware returns the runtime injector that attaches a translator with
// the database overrides of the request locale.
func (m *Module) Middleware() func(http.Handler) http.Handler {
	return m.container.TranslatorMiddleware()
}

// Files returns the translation file store.
func (m *Module) Files() *langfiles.Store {
	return m.container.Files()
}

// Editor returns the file editor service.
func (m *Module) Editor() EditorService {
	return m.container.EditorService()
}

// Overrides returns the override service, nil when overrides are disabled.
func (m *Module) Overrides() OverrideService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.OverrideService()
}

// Commands returns the override cache command handlers, nil when overrides
// are disabled.
func (m *Module) Commands() *CommandHandlers {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands()
}

// Close releases the connections the module opened.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// TranslatorFromContext returns the translator the runtime middleware
// attached to ctx.
func TranslatorFromContext(ctx context.Context) (*Translator, bool) {
	return translator.FromContext(ctx)
}
