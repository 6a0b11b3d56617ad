package localization_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	localization "github.com/goliatone/go-localization"
	"github.com/goliatone/go-localization/pkg/testsupport"
)

func newModule(t *testing.T, opts ...localization.Option) (*localization.Module, string) {
	t.Helper()
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"en/messages.json": `{"welcome":"Welcome :name","farewell":"Bye"}`,
		"es/messages.json": `{"welcome":"Bienvenido :name"}`,
	})
	cfg := localization.DefaultConfig()
	cfg.Path = root

	opts = append([]localization.Option{localization.WithBunDB(testsupport.NewBunDB(t))}, opts...)
	module, err := localization.New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("localization.New: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module, root
}

func TestModuleServesAdminAndRuntimeTranslations(t *testing.T) {
	module, _ := newModule(t)

	mux := http.NewServeMux()
	if err := module.Register(mux); err != nil {
		t.Fatalf("register: %v", err)
	}
	mux.Handle("GET /hello", module.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr, ok := localization.TranslatorFromContext(r.Context())
		if !ok {
			http.Error(w, "no translator", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(tr.Translate(r.Context(), "messages.welcome", "name", "Ana")))
	})))

	hello := func() string {
		req := httptest.NewRequest(http.MethodGet, "/hello", nil)
		req.Header.Set("Accept-Language", "es-MX,es;q=0.9")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Body.String()
	}
	if got := hello(); got != "Bienvenido Ana" {
		t.Fatalf("expected file translation, got %q", got)
	}

	payload, _ := json.Marshal(map[string]any{
		"overrides": []localization.OverrideInput{{Key: "messages.welcome", Locale: "es", Value: "Hola :name"}},
	})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/localization/overrides/store", bytes.NewReader(payload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("store override: %d %s", rec.Code, rec.Body.String())
	}
	if got := hello(); got != "Hola Ana" {
		t.Fatalf("expected override translation, got %q", got)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/localization/view", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("view: %d", rec.Code)
	}
	var index struct {
		TotalMissing int `json:"total_missing"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &index); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if index.TotalMissing != 1 {
		t.Fatalf("expected es farewell missing, got %d", index.TotalMissing)
	}
}

func TestModuleCommandsClearOverrideCache(t *testing.T) {
	var cleared [][]string
	module, _ := newModule(t, localization.WithInvalidationHook(func(_ context.Context, locales []string) error {
		cleared = append(cleared, locales)
		return nil
	}))
	ctx := context.Background()

	if _, err := module.Overrides().Save(ctx, []localization.OverrideInput{{Key: "messages.farewell", Locale: "es", Value: "Adiós"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(cleared) != 1 || len(cleared[0]) != 1 || cleared[0][0] != "es" {
		t.Fatalf("expected save to invalidate es, got %v", cleared)
	}

	handlers := module.Commands()
	if handlers == nil || handlers.Invalidate == nil {
		t.Fatal("expected invalidate handler")
	}
	if err := handlers.Invalidate.Execute(ctx, localization.InvalidateCacheCommand{Locales: []string{" es "}}); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if len(cleared) != 2 || cleared[1][0] != "es" {
		t.Fatalf("expected command to invalidate es, got %v", cleared)
	}
}

func TestModuleHandlerRejectsUnknownMiddleware(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{"en/messages.json": `{}`})
	cfg := localization.DefaultConfig()
	cfg.Path = root
	cfg.Features.Overrides = false
	cfg.Middleware = []string{"auth"}

	module, err := localization.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("localization.New: %v", err)
	}
	if _, err := module.Handler(); err == nil {
		t.Fatal("expected unknown middleware error")
	}
	if module.Overrides() != nil {
		t.Fatal("expected overrides disabled")
	}
}
