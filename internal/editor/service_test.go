package editor_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/goliatone/go-localization/internal/editor"
	"github.com/goliatone/go-localization/internal/langfiles"
	"github.com/goliatone/go-localization/internal/validation"
	"github.com/goliatone/go-localization/pkg/testsupport"
)

func newService(t *testing.T) (*editor.Service, string) {
	t.Helper()
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"en/auth.json":     `{"failed":"Invalid credentials","throttle":"Too many attempts"}`,
		"en/messages.json": `{"welcome":"Hi"}`,
		"fr/auth.json":     `{"failed":"Identifiants invalides","throttle":" "}`,
		"fr/messages.json": `{"welcome":"Salut"}`,
		"ku/.keep":         "",
	})
	store := langfiles.NewStore(langfiles.Config{Path: root, BaseLocale: "en"})
	return editor.NewService(store), root
}

func TestServiceIndex(t *testing.T) {
	svc, _ := newService(t)

	index, err := svc.Index(context.Background())
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if !slices.Equal(index.Locales, []string{"en", "fr", "ku"}) {
		t.Fatalf("unexpected locales %v", index.Locales)
	}
	if !slices.Equal(index.Files, []string{"auth.json", "messages.json"}) {
		t.Fatalf("unexpected file order %v", index.Files)
	}
	if got := index.Statuses["auth.json"]; got.Missing != 3 || got.Label != "3 missing keys" {
		t.Fatalf("unexpected auth status %+v", got)
	}
	if got := index.Missing.Locale("auth.json", "fr"); got == nil || !slices.Equal(got.Keys(), []string{"throttle"}) {
		t.Fatalf("expected blank fr key reported, got %v", got)
	}
	if index.TotalMissing != 4 {
		t.Fatalf("expected 4 gaps, got %d", index.TotalMissing)
	}
}

func TestServiceCompare(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cmp, err := svc.Compare(ctx, "auth.json")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !slices.Equal(cmp.BaseKeys, []string{"failed", "throttle"}) {
		t.Fatalf("unexpected base keys %v", cmp.BaseKeys)
	}
	if cmp.TotalKeys != 2 || cmp.MissingCount != 3 {
		t.Fatalf("unexpected counts total=%d missing=%d", cmp.TotalKeys, cmp.MissingCount)
	}
	if cmp.Content["ku"] == nil || cmp.Content["ku"].Len() != 0 {
		t.Fatalf("expected empty content for a locale without the file, got %v", cmp.Content["ku"])
	}

	_, err = svc.Compare(ctx, "../secrets.json")
	if !errors.Is(err, validation.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if issues := validation.Issues(err); len(issues) != 1 || issues[0].Location != "file" {
		t.Fatalf("expected issue on file, got %+v", issues)
	}
}

func TestServiceApplyUpdate(t *testing.T) {
	svc, root := newService(t)
	ctx := context.Background()

	submission := map[string]*langfiles.Messages{
		"fr": langfiles.NewMessages("failed", "Échec", "throttle", "Trop de tentatives"),
		"ku": langfiles.NewMessages("failed", "Çewt"),
	}
	if err := svc.ApplyUpdate(ctx, "auth.json", submission); err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	cmp, err := svc.Compare(ctx, "auth.json")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if value, _ := cmp.Content["fr"].Get("throttle"); value != "Trop de tentatives" {
		t.Fatalf("expected fr rewritten, got %q", value)
	}
	if cmp.MissingCount != 1 {
		t.Fatalf("expected only ku throttle missing, got %d", cmp.MissingCount)
	}

	first, err := os.ReadFile(filepath.Join(root, "fr", "auth.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := svc.ApplyUpdate(ctx, "auth.json", submission); err != nil {
		t.Fatalf("ApplyUpdate again: %v", err)
	}
	second, _ := os.ReadFile(filepath.Join(root, "fr", "auth.json"))
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical output for identical input:\n%s\n%s", first, second)
	}
}

func TestServiceApplyUpdateValidation(t *testing.T) {
	svc, root := newService(t)
	ctx := context.Background()

	if err := svc.ApplyUpdate(ctx, "unknown.json", map[string]*langfiles.Messages{"fr": langfiles.NewMessages()}); !errors.Is(err, validation.ErrValidation) {
		t.Fatalf("expected validation error for unknown file, got %v", err)
	}

	err := svc.ApplyUpdate(ctx, "auth.json", map[string]*langfiles.Messages{
		"fr": langfiles.NewMessages("failed", "Échec"),
		"zz": langfiles.NewMessages("failed", "?"),
	})
	if !errors.Is(err, validation.ErrValidation) {
		t.Fatalf("expected validation error for unknown locale, got %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "fr", "auth.json"))
	if !bytes.Contains(data, []byte("Identifiants invalides")) {
		t.Fatalf("expected nothing written when validation fails, got %s", data)
	}
}

func TestServiceApplyUpdateRejectsInvalidUTF8(t *testing.T) {
	svc, root := newService(t)
	ctx := context.Background()

	err := svc.ApplyUpdate(ctx, "auth.json", map[string]*langfiles.Messages{
		"fr": langfiles.NewMessages("failed", "\xffchec", "throttle", "Trop de tentatives"),
	})
	if !errors.Is(err, validation.ErrValidation) {
		t.Fatalf("expected validation error for invalid UTF-8, got %v", err)
	}
	issues := validation.Issues(err)
	if len(issues) != 1 || issues[0].Location != "translations.fr.failed" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	data, _ := os.ReadFile(filepath.Join(root, "fr", "auth.json"))
	if !bytes.Contains(data, []byte("Identifiants invalides")) {
		t.Fatalf("expected nothing written when validation fails, got %s", data)
	}
}
