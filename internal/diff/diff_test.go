package diff_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/goliatone/go-localization/internal/diff"
	"github.com/goliatone/go-localization/internal/langfiles"
)

type fakeReader struct {
	files map[string]*langfiles.Messages
	fail  map[string]error
}

func (f fakeReader) ReadFile(_ context.Context, locale, file string) (*langfiles.Messages, error) {
	key := locale + "/" + file
	if err := f.fail[key]; err != nil {
		return nil, err
	}
	messages, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", langfiles.ErrFileNotFound, key)
	}
	return messages.Clone(), nil
}

func TestComputeMissingAbsentLocaleFile(t *testing.T) {
	engine := diff.NewEngine(fakeReader{files: map[string]*langfiles.Messages{
		"en/messages.json": langfiles.NewMessages("hello", "Hello"),
	}})

	missing := engine.ComputeMissing(context.Background(), []string{"messages.json"}, "en", []string{"fr"})

	gaps := missing.Locale("messages.json", "fr")
	if gaps == nil {
		t.Fatalf("expected gaps for fr, got %v", missing)
	}
	if v, _ := gaps.Get("hello"); v != "Hello" || gaps.Len() != 1 {
		t.Fatalf("expected base placeholder, got %v", gaps.Map())
	}
}

func TestComputeMissingBlankAndAbsentKeys(t *testing.T) {
	engine := diff.NewEngine(fakeReader{files: map[string]*langfiles.Messages{
		"en/messages.json": langfiles.NewMessages("a", "A", "b", "B", "c", "C", "d", "D"),
		"fr/messages.json": langfiles.NewMessages("a", "", "b", "Bé", "d", "  "),
	}})

	missing := engine.ComputeMissing(context.Background(), []string{"messages.json"}, "en", []string{"fr"})

	gaps := missing.Locale("messages.json", "fr")
	if !slices.Equal(gaps.Keys(), []string{"a", "c", "d"}) {
		t.Fatalf("expected base-ordered gaps a,c,d, got %v", gaps.Keys())
	}
	if v, _ := gaps.Get("d"); v != "D" {
		t.Fatalf("expected base value placeholder, got %q", v)
	}
	if missing.Count("messages.json") != 3 {
		t.Fatalf("expected 3 missing keys, got %d", missing.Count("messages.json"))
	}
}

func TestComputeMissingOmitsCompletePairs(t *testing.T) {
	engine := diff.NewEngine(fakeReader{files: map[string]*langfiles.Messages{
		"en/messages.json": langfiles.NewMessages("hello", "Hello"),
		"fr/messages.json": langfiles.NewMessages("hello", "Bonjour", "extra", "Extra"),
		"de/messages.json": langfiles.NewMessages("hello", ""),
	}})

	missing := engine.ComputeMissing(context.Background(), []string{"messages.json"}, "en", []string{"en", "fr", "de"})

	if _, ok := missing["messages.json"]["fr"]; ok {
		t.Fatal("expected complete locale to be omitted")
	}
	if _, ok := missing["messages.json"]["en"]; ok {
		t.Fatal("expected base locale to be skipped")
	}
	if missing.Locale("messages.json", "de").Len() != 1 {
		t.Fatalf("expected de gap, got %v", missing)
	}
}

func TestComputeMissingNeverReportsTranslatedKeys(t *testing.T) {
	base := langfiles.NewMessages("k1", "v1", "k2", "v2", "k3", "v3")
	locale := langfiles.NewMessages("k1", "t1", "k3", "t3")
	engine := diff.NewEngine(fakeReader{files: map[string]*langfiles.Messages{
		"en/f.json": base,
		"fr/f.json": locale,
	}})

	missing := engine.ComputeMissing(context.Background(), []string{"f.json"}, "en", []string{"fr"})

	for key := range missing.Locale("f.json", "fr").All() {
		if v, ok := locale.Get(key); ok && !langfiles.IsBlank(v) {
			t.Fatalf("key %q is translated but was reported missing", key)
		}
	}
}

func TestComputeMissingDegradesReadErrors(t *testing.T) {
	engine := diff.NewEngine(fakeReader{
		files: map[string]*langfiles.Messages{
			"en/messages.json": langfiles.NewMessages("hello", "Hello"),
		},
		fail: map[string]error{"fr/messages.json": errors.New("permission denied")},
	})

	missing := engine.ComputeMissing(context.Background(), []string{"messages.json"}, "en", []string{"fr"})
	if missing.Locale("messages.json", "fr").Len() != 1 {
		t.Fatalf("expected unreadable file to be treated as empty, got %v", missing)
	}
}

func TestSortFilesProblemsFirstStable(t *testing.T) {
	missing := diff.Missing{
		"c.json": {"fr": langfiles.NewMessages("x", "X")},
		"d.json": {"fr": langfiles.NewMessages("y", "Y")},
	}
	got := diff.SortFiles([]string{"a.json", "c.json", "b.json", "d.json"}, missing)
	want := []string{"c.json", "d.json", "a.json", "b.json"}
	if !slices.Equal(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestStatuses(t *testing.T) {
	missing := diff.Missing{
		"a.json": {
			"fr": langfiles.NewMessages("x", "X", "y", "Y"),
			"de": langfiles.NewMessages("x", "X"),
		},
	}
	statuses := diff.Statuses([]string{"a.json", "b.json"}, missing)

	if statuses["a.json"].Label != "3 missing keys" || statuses["a.json"].Missing != 3 {
		t.Fatalf("unexpected status %+v", statuses["a.json"])
	}
	if statuses["b.json"].Label != "All complete" {
		t.Fatalf("unexpected status %+v", statuses["b.json"])
	}
}
