package logging

import (
	"context"
	"maps"
	"testing"

	"github.com/goliatone/go-localization/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, maps.Clone(fields))
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "localization.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerAnnotatesModuleField(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = OverridesLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != overridesModule {
		t.Fatalf("expected module %s, got %v", overridesModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != overridesModule {
		t.Fatalf("expected module field %s, got %v", overridesModule, rec.fields)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestWithFileContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithFileContext(rec, "fr", " ", "write")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got["locale"] != "fr" || got["action"] != "write" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, ok := got["file"]; ok {
		t.Fatalf("expected blank file to be skipped, got %v", got)
	}
}

func TestContextWithFieldsMerges(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "r-1"})
	ctx = ContextWithFields(ctx, map[string]any{"locale": "de"})

	fields := ContextFields(ctx)
	if fields["request_id"] != "r-1" || fields["locale"] != "de" {
		t.Fatalf("expected merged fields, got %v", fields)
	}

	fields["locale"] = "mutated"
	if ContextFields(ctx)["locale"] != "de" {
		t.Fatal("expected ContextFields to return a copy")
	}
}
