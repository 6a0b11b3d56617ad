package di

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-localization/internal/langfiles"
	"github.com/goliatone/go-localization/internal/logging/gologger"
	"github.com/goliatone/go-localization/internal/overrides"
	"github.com/goliatone/go-localization/internal/runtimeconfig"
	"github.com/goliatone/go-localization/internal/translator"
	"github.com/goliatone/go-localization/pkg/testsupport"
)

func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"en/messages.json": `{"welcome":"Welcome"}`,
		"fr/messages.json": `{"welcome":"Bienvenue"}`,
	})
	cfg := runtimeconfig.DefaultConfig()
	cfg.Path = root
	return cfg
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.BaseLocale = ""
	if _, err := NewContainer(context.Background(), cfg); !errors.Is(err, runtimeconfig.ErrBaseLocaleRequired) {
		t.Fatalf("expected ErrBaseLocaleRequired, got %v", err)
	}
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Features.Overrides = false
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	provider, ok := container.LoggerProvider().(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
	if provider.GetLogger("localization.test") == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestContainerWiresOverridesEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.Middleware = []string{"log"}

	container, err := NewContainer(context.Background(), cfg, WithBunDB(testsupport.NewBunDB(t)))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	mux := http.NewServeMux()
	if err := container.AdminAPI().Register(mux); err != nil {
		t.Fatalf("register: %v", err)
	}

	var welcome string
	runtime := container.TranslatorMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr, _ := translator.FromContext(r.Context())
		welcome = tr.Translate(r.Context(), "messages.welcome")
	}))
	serveRuntime := func() string {
		runtime.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?locale=fr", nil))
		return welcome
	}

	if got := serveRuntime(); got != "Bienvenue" {
		t.Fatalf("expected file value before override, got %q", got)
	}

	body, _ := json.Marshal(map[string]any{"overrides": []overrides.Input{{Key: "messages.welcome", Locale: "fr", Value: "Salut !"}}})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/localization/overrides/store", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("store: expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}

	if got := serveRuntime(); got != "Salut !" {
		t.Fatalf("expected override after store invalidated the cache, got %q", got)
	}

	if container.Commands() == nil {
		t.Fatal("expected override commands to be wired")
	}
}

type deleteTrackingService struct {
	repocache.CacheService
	invalidated [][]string
}

func (s *deleteTrackingService) InvalidateKeys(ctx context.Context, keys []string) error {
	s.invalidated = append(s.invalidated, keys)
	return s.CacheService.InvalidateKeys(ctx, keys)
}

func TestContainerUsesInjectedCacheService(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Prefix = "app_overrides"
	inner, err := repocache.NewCacheService(repocache.DefaultConfig())
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}
	service := &deleteTrackingService{CacheService: inner}

	container, err := NewContainer(context.Background(), cfg,
		WithBunDB(testsupport.NewBunDB(t)),
		WithCacheService(service),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	ctx := context.Background()
	svc := container.OverrideService()
	if _, err := svc.LocaleOverrides(ctx, "fr"); err != nil {
		t.Fatalf("LocaleOverrides: %v", err)
	}
	if _, err := svc.Save(ctx, []overrides.Input{{Key: "messages.welcome", Locale: "fr", Value: "Salut"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(service.invalidated) != 1 || len(service.invalidated[0]) != 1 || service.invalidated[0][0] != "app_overrides.fr" {
		t.Fatalf("expected app_overrides.fr to be invalidated, got %v", service.invalidated)
	}
	values, err := svc.LocaleOverrides(ctx, "fr")
	if err != nil {
		t.Fatalf("LocaleOverrides: %v", err)
	}
	if values["messages.welcome"] != "Salut" {
		t.Fatalf("expected fresh overrides, got %v", values)
	}
}

func TestContainerWithoutOverrides(t *testing.T) {
	cfg := testConfig(t)
	cfg.Features.Overrides = false

	container, err := NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.OverrideService() != nil || container.Commands() != nil {
		t.Fatal("expected override services to stay disabled")
	}

	mux := http.NewServeMux()
	if err := container.AdminAPI().Register(mux); err != nil {
		t.Fatalf("register: %v", err)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/localization/overrides", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/localization/view", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected view to work without overrides, got %d", rec.Code)
	}
}

func TestContainerUnknownMiddlewareFailsRegistration(t *testing.T) {
	cfg := testConfig(t)
	cfg.Features.Overrides = false
	cfg.Middleware = []string{"auth"}

	container, err := NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if err := container.AdminAPI().Register(http.NewServeMux()); err == nil {
		t.Fatal("expected unknown middleware to fail registration")
	}

	container, err = NewContainer(context.Background(), cfg, WithMiddleware("auth", func(next http.Handler) http.Handler { return next }))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if err := container.AdminAPI().Register(http.NewServeMux()); err != nil {
		t.Fatalf("expected registered middleware to resolve, got %v", err)
	}
}

func TestContainerSelectsCodec(t *testing.T) {
	cfg := testConfig(t)
	cfg.Features.Overrides = false
	cfg.Format = "yaml"

	container, err := NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if _, ok := container.Files().Codec().(langfiles.YAMLCodec); !ok {
		t.Fatalf("expected yaml codec, got %T", container.Files().Codec())
	}
}
