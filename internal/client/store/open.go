package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/medbook/internal/client/store/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the SQLite file at path, applies pending
// migrations and returns the store together with the underlying handle,
// which the caller closes.
func Open(ctx context.Context, path string) (*SQLiteStore, *sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// One connection keeps SQLite writers serialized.
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return NewSQLiteStore(db), db, nil
}

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
