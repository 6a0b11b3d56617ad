package audit

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/goliatone/go-localization/pkg/interfaces"
)

// Event captures a change applied to an override or a translation file.
type Event struct {
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Action     string         `json:"action"`
	OccurredAt time.Time      `json:"occurred_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Recorder persists audit events.
type Recorder interface {
	Record(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
	Clear(ctx context.Context) error
}

// MemoryRecorder accumulates audit events in memory.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewMemoryRecorder constructs an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record stores a copy of event.
func (r *MemoryRecorder) Record(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	event.Metadata = maps.Clone(event.Metadata)
	r.events = append(r.events, event)
	return nil
}

// Events returns a snapshot of recorded entries.
func (r *MemoryRecorder) Events() []Event {
	events, _ := r.List(context.Background())
	return events
}

// Fail makes subsequent Record calls return err.
func (r *MemoryRecorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *MemoryRecorder) List(context.Context) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events), nil
}

func (r *MemoryRecorder) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	return nil
}

// LogRecorder writes every event to a logger and keeps nothing.
type LogRecorder struct {
	logger interfaces.Logger
}

// NewLogRecorder constructs a recorder backed by logger.
func NewLogRecorder(logger interfaces.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(ctx context.Context, event Event) error {
	if r.logger == nil {
		return nil
	}
	args := []any{
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"occurred_at", event.OccurredAt,
	}
	for _, key := range slices.Sorted(maps.Keys(event.Metadata)) {
		args = append(args, key, event.Metadata[key])
	}
	r.logger.WithContext(ctx).Info("audit."+event.Action, args...)
	return nil
}

func (r *LogRecorder) List(context.Context) ([]Event, error) { return nil, nil }
func (r *LogRecorder) Clear(context.Context) error            { return nil }
