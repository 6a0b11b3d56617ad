package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	localization "github.com/goliatone/go-localization"
	"github.com/goliatone/go-localization/pkg/testsupport"
)

func writeLang(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"en/messages.json": `{"welcome":"Welcome","farewell":"Bye"}`,
		"de/messages.json": `{"welcome":"Willkommen","farewell":""}`,
	})
	return root
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMissingReportsBlankKeys(t *testing.T) {
	root := writeLang(t)

	out, err := runRoot(t, "missing", "--path", root, "--no-overrides")
	if err != nil {
		t.Fatalf("missing returned error: %v", err)
	}
	if !strings.Contains(out, "1 missing key(s)") {
		t.Fatalf("expected summary line, got %q", out)
	}
	if !strings.Contains(out, "messages.json\tde\tfarewell\t\"Bye\"") {
		t.Fatalf("expected missing farewell row, got %q", out)
	}
}

func TestMissingJSON(t *testing.T) {
	root := writeLang(t)

	out, err := runRoot(t, "missing", "--path", root, "--no-overrides", "--json")
	if err != nil {
		t.Fatalf("missing returned error: %v", err)
	}
	if !strings.Contains(out, `"total_missing": 1`) {
		t.Fatalf("expected json report, got %q", out)
	}
}

func TestCacheClearRunsInvalidateCommand(t *testing.T) {
	root := writeLang(t)
	dsn := "file:" + filepath.Join(t.TempDir(), "overrides.db") + "?_fk=1"

	out, err := runRoot(t, "cache", "clear", "de", "--path", root, "--db-dsn", dsn)
	if err != nil {
		t.Fatalf("cache clear returned error: %v", err)
	}
	if !strings.Contains(out, "override cache cleared") {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(out, `warning: cache driver "memory" is local to this process`) {
		t.Fatalf("expected process-local cache warning, got %q", out)
	}
}

func TestCacheClearRequiresOverrides(t *testing.T) {
	root := writeLang(t)

	if _, err := runRoot(t, "cache", "clear", "--path", root, "--no-overrides"); err == nil {
		t.Fatal("expected error when overrides are disabled")
	}
}

func TestCacheWarmWithoutLocalesWarmsAll(t *testing.T) {
	root := writeLang(t)
	dsn := "file:" + filepath.Join(t.TempDir(), "overrides.db") + "?_fk=1"

	out, err := runRoot(t, "cache", "warm", "--path", root, "--db-dsn", dsn)
	if err != nil {
		t.Fatalf("cache warm returned error: %v", err)
	}
	if !strings.Contains(out, "override cache warmed") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNewServerMountsAdminRoutes(t *testing.T) {
	root := writeLang(t)
	cfg := localization.DefaultConfig()
	cfg.Path = root
	cfg.Features.Overrides = false

	module, err := moduleBuilder(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	defer module.Close()

	server, err := newServer(module, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}

	for path, want := range map[string]int{
		"/healthz":           http.StatusNoContent,
		"/localization/view": http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, rec.Code)
		}
	}
}
