// Package sqlite provides a SQLite-backed store.Store using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/xraph/folio/store"
	"github.com/xraph/folio/store/internal/sqlstore"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store on a SQLite database file.
type Store struct {
	*sqlstore.Store
}

// Dialect is the SQLite flavour of the shared SQL store.
var Dialect = &sqlstore.Dialect{
	Name:            "folio/sqlite",
	TimeArg:         sqlstore.TextTime,
	UniqueViolation: uniqueViolation,
	Migrations:      Migrations,
}

// Open opens (creating if needed) the database at dsn. Use ":memory:" for
// a private in-memory database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("folio/sqlite: open: %w", err)
	}
	// SQLite serialises writers; a single connection keeps an in-memory
	// database alive and avoids SQLITE_BUSY between pool connections.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("folio/sqlite: %s: %w", pragma, err)
		}
	}
	return New(db), nil
}

// New wraps an already open SQLite handle.
func New(db *sql.DB) *Store {
	return &Store{Store: sqlstore.New(db, Dialect)}
}

func uniqueViolation(err error) (string, bool) {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return "", false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return se.Error(), true
	}
	return "", false
}
