package overrides

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists overrides and emits change notifications.
type Repository interface {
	// List returns every override, newest first.
	List(ctx context.Context) ([]*Override, error)
	ListByLocale(ctx context.Context, locale string) ([]*Override, error)
	// Search matches query case-insensitively against key or value.
	Search(ctx context.Context, query string) ([]*Override, error)
	// Locales returns the distinct locales holding at least one override.
	Locales(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Override, error)
	GetByKeyLocale(ctx context.Context, key, locale string) (*Override, error)
	Create(ctx context.Context, record *Override) (*Override, error)
	Update(ctx context.Context, record *Override) (*Override, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// NewOverrideRepository creates the generic repository used by BunRepository.
func NewOverrideRepository(db *bun.DB) repository.Repository[*Override] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Override]{
		NewRecord:          func() *Override { return &Override{} },
		GetID:              func(record *Override) uuid.UUID { return record.ID },
		SetID:              func(record *Override, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "key" },
		GetIdentifierValue: func(record *Override) string { return record.Key },
	})
}
