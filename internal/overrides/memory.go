package overrides

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository stores overrides in memory.
type MemoryRepository struct {
	mu          sync.RWMutex
	records     map[uuid.UUID]*Override
	broadcaster *changeBroadcaster
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records:     map[uuid.UUID]*Override{},
		broadcaster: newChangeBroadcaster(),
	}
}

func (r *MemoryRepository) List(context.Context) ([]*Override, error) {
	return r.filter(func(*Override) bool { return true }, newestFirst), nil
}

func (r *MemoryRepository) ListByLocale(_ context.Context, locale string) ([]*Override, error) {
	return r.filter(func(o *Override) bool { return o.Locale == locale }, byKeyLocale), nil
}

func (r *MemoryRepository) Search(_ context.Context, query string) ([]*Override, error) {
	needle := strings.ToLower(query)
	return r.filter(func(o *Override) bool {
		return strings.Contains(strings.ToLower(o.Key), needle) || strings.Contains(strings.ToLower(o.Value), needle)
	}, byKeyLocale), nil
}

func (r *MemoryRepository) Locales(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	locales := []string{}
	for _, record := range r.records {
		if !slices.Contains(locales, record.Locale) {
			locales = append(locales, record.Locale)
		}
	}
	slices.Sort(locales)
	return locales, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Override, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, ErrOverrideNotFound
	}
	return record.clone(), nil
}

func (r *MemoryRepository) GetByKeyLocale(_ context.Context, key, locale string) (*Override, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.records {
		if record.Key == key && record.Locale == locale {
			return record.clone(), nil
		}
	}
	return nil, ErrOverrideNotFound
}

// Create stores record. A second row for the same key and locale is
// rejected like the unique index of the SQL table would.
func (r *MemoryRepository) Create(_ context.Context, record *Override) (*Override, error) {
	r.mu.Lock()
	for _, existing := range r.records {
		if existing.Key == record.Key && existing.Locale == record.Locale {
			r.mu.Unlock()
			return nil, &duplicateError{key: record.Key, locale: record.Locale}
		}
	}
	stored := record.clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	r.records[stored.ID] = stored
	r.mu.Unlock()

	r.broadcaster.Broadcast(newChangeEvent(ChangeCreated, stored))
	return stored.clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, record *Override) (*Override, error) {
	r.mu.Lock()
	existing, ok := r.records[record.ID]
	if !ok {
		r.mu.Unlock()
		return nil, ErrOverrideNotFound
	}
	existing.Value = record.Value
	existing.UpdatedAt = record.UpdatedAt
	stored := existing.clone()
	r.mu.Unlock()

	r.broadcaster.Broadcast(newChangeEvent(ChangeUpdated, stored))
	return stored, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	existing, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return ErrOverrideNotFound
	}
	delete(r.records, id)
	r.mu.Unlock()

	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, existing))
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *MemoryRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

func (r *MemoryRepository) filter(keep func(*Override) bool, order func(a, b *Override) int) []*Override {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Override{}
	for _, record := range r.records {
		if keep(record) {
			out = append(out, record.clone())
		}
	}
	slices.SortFunc(out, order)
	return out
}

// newestFirst relies on time ordered (v7) ids, mirroring "ORDER BY id DESC".
func newestFirst(a, b *Override) int {
	return bytes.Compare(b.ID[:], a.ID[:])
}

func byKeyLocale(a, b *Override) int {
	if c := strings.Compare(a.Key, b.Key); c != 0 {
		return c
	}
	return strings.Compare(a.Locale, b.Locale)
}

type duplicateError struct {
	key, locale string
}

func (e *duplicateError) Error() string {
	return "overrides: override already exists for " + e.key + " (" + e.locale + ")"
}
