package overrides

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BunRepository persists overrides in the override_translations table.
type BunRepository struct {
	db          *bun.DB
	repo        repository.Repository[*Override]
	broadcaster *changeBroadcaster
}

// NewBunRepository constructs a Bun backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:          db,
		repo:        NewOverrideRepository(db),
		broadcaster: newChangeBroadcaster(),
	}
}

// CreateSchema creates the override table and its unique index when missing.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errors.New("overrides: bun repository requires a database")
	}
	if _, err := db.NewCreateTable().Model((*Override)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("overrides: create table: %w", err)
	}
	return nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Override, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.id DESC")
	}))
	return records, err
}

func (r *BunRepository) ListByLocale(ctx context.Context, locale string) ([]*Override, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.locale = ?", locale)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.key ASC")
		}),
	)
	return records, err
}

func (r *BunRepository) Search(ctx context.Context, query string) ([]*Override, error) {
	ordered := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.key ASC, ?TableAlias.locale ASC")
	})
	if r.db.Dialect().Name() == dialect.PG {
		pattern := "%" + escapeLike(query) + "%"
		records, _, err := r.repo.List(ctx,
			repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
					return q.
						Where("?TableAlias.key ILIKE ? ESCAPE '!'", pattern).
						WhereOr("?TableAlias.value ILIKE ? ESCAPE '!'", pattern)
				})
			}),
			ordered,
		)
		return records, err
	}

	// sqlite LOWER only folds ASCII, so matching happens here.
	records, _, err := r.repo.List(ctx, ordered)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	hits := make([]*Override, 0, len(records))
	for _, record := range records {
		if strings.Contains(strings.ToLower(record.Key), needle) || strings.Contains(strings.ToLower(record.Value), needle) {
			hits = append(hits, record)
		}
	}
	return hits, nil
}

func (r *BunRepository) Locales(ctx context.Context) ([]string, error) {
	var locales []string
	err := r.db.NewSelect().
		Model((*Override)(nil)).
		Distinct().
		Column("locale").
		OrderExpr("locale ASC").
		Scan(ctx, &locales)
	if err != nil {
		return nil, err
	}
	return locales, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Override, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return record, nil
}

func (r *BunRepository) GetByKeyLocale(ctx context.Context, key, locale string) (*Override, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.key = ?", key)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.locale = ?", locale)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if len(records) == 0 {
		return nil, ErrOverrideNotFound
	}
	return records[0], nil
}

func (r *BunRepository) Create(ctx context.Context, record *Override) (*Override, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	r.broadcaster.Broadcast(newChangeEvent(ChangeCreated, created))
	return created, nil
}

func (r *BunRepository) Update(ctx context.Context, record *Override) (*Override, error) {
	if _, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("value", "updated_at"),
	); err != nil {
		return nil, mapRepositoryError(err)
	}
	stored, err := r.GetByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	r.broadcaster.Broadcast(newChangeEvent(ChangeUpdated, stored))
	return stored, nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &Override{ID: id}); err != nil {
		return mapRepositoryError(err)
	}
	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, existing))
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return ErrOverrideNotFound
	}
	return fmt.Errorf("override repository error: %w", err)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
