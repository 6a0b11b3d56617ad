package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-localization/internal/editor"
	"github.com/goliatone/go-localization/internal/langfiles"
	"github.com/goliatone/go-localization/internal/logging"
	"github.com/goliatone/go-localization/internal/overrides"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

// ErrMiddlewareUnknown is returned by Register when a route middleware name
// was never registered.
var ErrMiddlewareUnknown = errors.New("http: unknown middleware")

// EditorService builds the file views and applies edits.
type EditorService interface {
	Index(ctx context.Context) (editor.Index, error)
	Compare(ctx context.Context, file string) (editor.Comparison, error)
	ApplyUpdate(ctx context.Context, file string, submission map[string]*langfiles.Messages) error
}

// OverrideService manages stored overrides.
type OverrideService interface {
	List(ctx context.Context) ([]*overrides.Override, error)
	Locales(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string) ([]overrides.SearchResult, error)
	OriginalValues(ctx context.Context, fullKey string) (map[string]string, error)
	Save(ctx context.Context, inputs []overrides.Input) (int, error)
	Update(ctx context.Context, id uuid.UUID, value string) (*overrides.Override, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Archiver writes every translation file into a zip archive.
type Archiver interface {
	Archive(ctx context.Context, w io.Writer) error
}

// Middleware wraps a route handler.
type Middleware func(http.Handler) http.Handler

// AdminAPI registers the localization admin endpoints.
type AdminAPI struct {
	basePath   string
	editor     EditorService
	overrides  OverrideService
	archiver   Archiver
	registry   map[string]Middleware
	middleware []string
	logger     interfaces.Logger
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI. The request logger is registered
// under the name "log".
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: "/localization",
		registry: map[string]Middleware{},
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	if _, ok := api.registry["log"]; !ok {
		api.registry["log"] = RequestLogger(api.logger)
	}
	return api
}

// WithBasePath overrides the route prefix (defaults to "/localization").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithEditorService wires the file editor.
func WithEditorService(service EditorService) AdminOption {
	return func(api *AdminAPI) {
		api.editor = service
	}
}

// WithOverrideService wires the override store. Without it the override
// routes answer 503.
func WithOverrideService(service OverrideService) AdminOption {
	return func(api *AdminAPI) {
		api.overrides = service
	}
}

// WithArchiver wires the download-all archive writer.
func WithArchiver(archiver Archiver) AdminOption {
	return func(api *AdminAPI) {
		api.archiver = archiver
	}
}

// WithMiddleware registers fn under name so WithRouteMiddleware can select it.
func WithMiddleware(name string, fn Middleware) AdminOption {
	return func(api *AdminAPI) {
		if name = strings.TrimSpace(name); name != "" && fn != nil {
			api.registry[name] = fn
		}
	}
}

// WithRouteMiddleware selects the registered middleware wrapped around every
// route, outermost first.
func WithRouteMiddleware(names ...string) AdminOption {
	return func(api *AdminAPI) {
		api.middleware = slices.Clone(names)
	}
}

// WithLogger sets the HTTP logger.
func WithLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the admin endpoints to mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}
	chain, err := api.resolveMiddleware()
	if err != nil {
		return err
	}

	base := joinPath(api.basePath, "")
	handle := func(pattern string, fn http.HandlerFunc) {
		var handler http.Handler = fn
		for i := len(chain) - 1; i >= 0; i-- {
			handler = chain[i](handler)
		}
		mux.Handle(pattern, handler)
	}

	api.registerFileRoutes(handle, base)
	api.registerOverrideRoutes(handle, base)
	return nil
}

func (api *AdminAPI) resolveMiddleware() ([]Middleware, error) {
	chain := make([]Middleware, 0, len(api.middleware))
	for _, name := range api.middleware {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		fn, ok := api.registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMiddlewareUnknown, name)
		}
		chain = append(chain, fn)
	}
	return chain, nil
}

func (api *AdminAPI) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.Error("http.request.failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		api.logger.Debug("http.request.rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, payload)
}
