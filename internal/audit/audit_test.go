package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRecorderCopiesMetadata(t *testing.T) {
	rec := NewMemoryRecorder()
	meta := map[string]any{"locale": "fr"}

	if err := rec.Record(context.Background(), Event{EntityType: "override", Action: "override_saved", OccurredAt: time.Now(), Metadata: meta}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	meta["locale"] = "de"

	events := rec.Events()
	if len(events) != 1 || events[0].Metadata["locale"] != "fr" {
		t.Fatalf("expected isolated metadata, got %+v", events)
	}

	if err := rec.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(rec.Events()) != 0 {
		t.Fatal("expected no events after Clear")
	}
}

func TestMemoryRecorderFail(t *testing.T) {
	rec := NewMemoryRecorder()
	boom := errors.New("boom")
	rec.Fail(boom)

	if err := rec.Record(context.Background(), Event{}); !errors.Is(err, boom) {
		t.Fatalf("expected configured error, got %v", err)
	}
}
