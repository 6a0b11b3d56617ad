package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-localization/internal/overrides"
	"github.com/goliatone/go-localization/internal/runtimeconfig"
)

// ErrDriverUnsupported is returned for drivers other than sqlite and postgres.
var ErrDriverUnsupported = errors.New("storage: unsupported driver")

// Open connects to the override database described by cfg and checks the
// connection.
func Open(ctx context.Context, cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	dsn := strings.TrimSpace(cfg.DSN)

	var db *bun.DB
	switch driver {
	case "", "sqlite", "sqlite3":
		if dsn == "" {
			dsn = runtimeconfig.DefaultConfig().Storage.DSN
		}
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		// sqlite allows a single writer.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case "postgres", "postgresql":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %s", ErrDriverUnsupported, cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", driver, err)
	}
	return db, nil
}

// Migrate creates the tables the module persists to.
func Migrate(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errors.New("storage: database is nil")
	}
	if err := overrides.CreateSchema(ctx, db); err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}

// OpenAndMigrate opens the database and applies Migrate.
func OpenAndMigrate(ctx context.Context, cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
