package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localization/internal/audit"
	overridescmd "github.com/goliatone/go-localization/internal/commands/overrides"
	"github.com/goliatone/go-localization/internal/editor"
	adminhttp "github.com/goliatone/go-localization/internal/http"
	"github.com/goliatone/go-localization/internal/langfiles"
	"github.com/goliatone/go-localization/internal/logging"
	"github.com/goliatone/go-localization/internal/logging/console"
	"github.com/goliatone/go-localization/internal/logging/gologger"
	"github.com/goliatone/go-localization/internal/overridecache"
	"github.com/goliatone/go-localization/internal/overrides"
	"github.com/goliatone/go-localization/internal/runtimeconfig"
	"github.com/goliatone/go-localization/internal/storage"
	"github.com/goliatone/go-localization/internal/translator"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

// Container wires the module services from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	store     *langfiles.Store
	bunDB     *bun.DB
	ownsDB    bool
	redis     *redis.Client
	ownsRedis bool

	overrideRepo overrides.Repository
	overrideSvc  *overrides.Service
	cache        overridecache.Cache
	cacheService repocache.CacheService
	audit        audit.Recorder
	hooks        []overrides.InvalidationHook

	editorSvc *editor.Service
	commands  *overridescmd.HandlerSet
	registry  overridescmd.CommandRegistry

	middleware map[string]adminhttp.Middleware
	api        *adminhttp.AdminAPI
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies the override database instead of opening one from the
// storage config. The container does not close a supplied database.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithOverrideRepository supplies the override repository directly.
func WithOverrideRepository(repo overrides.Repository) Option {
	return func(c *Container) {
		c.overrideRepo = repo
	}
}

// WithOverrideCache supplies the per-locale override cache.
func WithOverrideCache(cache overridecache.Cache) Option {
	return func(c *Container) {
		c.cache = cache
	}
}

// WithCacheService keeps override maps in service instead of a cache built
// from the cache config.
func WithCacheService(service repocache.CacheService) Option {
	return func(c *Container) {
		c.cacheService = service
	}
}

// WithRedisClient backs the override cache with client.
func WithRedisClient(client *redis.Client) Option {
	return func(c *Container) {
		c.redis = client
	}
}

// WithAuditRecorder records override mutations.
func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(c *Container) {
		c.audit = recorder
	}
}

// WithInvalidationHook runs hook after every override cache invalidation.
func WithInvalidationHook(hook overrides.InvalidationHook) Option {
	return func(c *Container) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

// WithMiddleware registers route middleware selectable by name from the
// Middleware config list.
func WithMiddleware(name string, fn adminhttp.Middleware) Option {
	return func(c *Container) {
		c.middleware[name] = fn
	}
}

// WithCommandRegistry registers the command handlers with reg.
func WithCommandRegistry(reg overridescmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{
		Config:     cfg,
		middleware: map[string]adminhttp.Middleware{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureFiles(); err != nil {
		return nil, err
	}
	if cfg.Features.Overrides {
		if err := c.configureOverrides(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	c.editorSvc = editor.NewService(c.store, editor.WithLogger(logging.FilesLogger(c.loggerProvider)))
	if err := c.configureAPI(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: configure go-logger: %w", err)
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureFiles() error {
	codec, err := langfiles.CodecFor(c.Config.Format)
	if err != nil {
		return err
	}
	c.store = langfiles.NewStore(langfiles.Config{
		Path:       c.Config.Path,
		BaseLocale: c.Config.BaseLocale,
		Exclude:    c.Config.Exclude,
		Codec:      codec,
		Logger:     logging.FilesLogger(c.loggerProvider),
	})
	return nil
}

func (c *Container) configureOverrides(ctx context.Context) error {
	if c.overrideRepo == nil {
		if c.bunDB == nil {
			db, err := storage.OpenAndMigrate(ctx, c.Config.Storage)
			if err != nil {
				return err
			}
			c.bunDB = db
			c.ownsDB = true
		} else if err := storage.Migrate(ctx, c.bunDB); err != nil {
			return err
		}
		c.overrideRepo = overrides.NewBunRepository(c.bunDB)
	}

	if err := c.configureCache(ctx); err != nil {
		return err
	}

	logger := logging.OverridesLogger(c.loggerProvider)
	if c.audit == nil {
		c.audit = audit.NewLogRecorder(logger)
	}
	opts := []overrides.Option{
		overrides.WithCache(c.cache),
		overrides.WithAuditRecorder(c.audit),
		overrides.WithLogger(logger),
	}
	for _, hook := range c.hooks {
		opts = append(opts, overrides.WithInvalidationHook(hook))
	}
	c.overrideSvc = overrides.NewService(c.overrideRepo, c.store, opts...)

	set, err := overridescmd.RegisterOverrideCommands(c.registry, c.overrideSvc, c.loggerProvider, c.Config.Commands.Timeout)
	if err != nil {
		return err
	}
	c.commands = set
	return nil
}

func (c *Container) configureCache(ctx context.Context) error {
	if c.cache != nil {
		return nil
	}
	prefix := c.Config.Cache.Prefix
	if c.redis != nil {
		c.cache = overridecache.NewRedisCacheFromClient(c.redis, prefix)
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(c.Config.Cache.Driver), "redis") {
		cache, client, err := overridecache.NewRedisCache(ctx, c.Config.Cache.RedisURL, prefix)
		if err != nil {
			return err
		}
		c.cache = cache
		c.redis = client
		c.ownsRedis = true
		return nil
	}
	if c.cacheService != nil {
		c.cache = overridecache.NewServiceCache(c.cacheService, prefix)
		return nil
	}
	cache, err := overridecache.NewMemoryCache(c.Config.Cache.TTL, prefix)
	if err != nil {
		return fmt.Errorf("localization: override cache: %w", err)
	}
	c.cache = cache
	return nil
}

func (c *Container) configureAPI() error {
	opts := []adminhttp.AdminOption{
		adminhttp.WithBasePath(c.Config.Route),
		adminhttp.WithEditorService(c.editorSvc),
		adminhttp.WithArchiver(c.store),
		adminhttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
		adminhttp.WithRouteMiddleware(c.Config.Middleware...),
	}
	if c.overrideSvc != nil {
		opts = append(opts, adminhttp.WithOverrideService(c.overrideSvc))
	}
	for name, fn := range c.middleware {
		opts = append(opts, adminhttp.WithMiddleware(name, fn))
	}
	c.api = adminhttp.NewAdminAPI(opts...)
	return nil
}

// Files returns the translation file store.
func (c *Container) Files() *langfiles.Store { return c.store }

// EditorService returns the file editor.
func (c *Container) EditorService() *editor.Service { return c.editorSvc }

// OverrideService returns the override service, nil when overrides are
// disabled.
func (c *Container) OverrideService() *overrides.Service { return c.overrideSvc }

// AdminAPI returns the HTTP admin endpoints.
func (c *Container) AdminAPI() *adminhttp.AdminAPI { return c.api }

// Commands returns the override command handlers, nil when overrides are
// disabled.
func (c *Container) Commands() *overridescmd.HandlerSet { return c.commands }

// LoggerProvider returns the configured logger provider, possibly nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// TranslatorMiddleware returns the runtime override injector for host
// routes.
func (c *Container) TranslatorMiddleware() func(http.Handler) http.Handler {
	var source translator.OverrideSource
	if c.overrideSvc != nil {
		source = c.overrideSvc
	}
	return translator.Middleware(c.store, source, translator.WithMiddlewareLogger(logging.TranslatorLogger(c.loggerProvider)))
}

// Close releases the database and redis connections the container opened.
func (c *Container) Close() error {
	var errs []error
	if c.ownsDB && c.bunDB != nil {
		errs = append(errs, c.bunDB.Close())
		c.bunDB = nil
	}
	if c.ownsRedis && c.redis != nil {
		errs = append(errs, c.redis.Close())
		c.redis = nil
	}
	return errors.Join(errs...)
}
