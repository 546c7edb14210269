// Package postgres provides a PostgreSQL-backed store.Store using pgx
// through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/xraph/folio/store"
	"github.com/xraph/folio/store/internal/sqlstore"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// uniqueViolationCode is the SQLSTATE for unique_violation.
const uniqueViolationCode = "23505"

// Store implements store.Store on PostgreSQL.
type Store struct {
	*sqlstore.Store
}

// Dialect is the PostgreSQL flavour of the shared SQL store.
var Dialect = &sqlstore.Dialect{
	Name:            "folio/postgres",
	Dollar:          true,
	TimeArg:         sqlstore.NativeTime,
	UniqueViolation: uniqueViolation,
	Migrations:      Migrations,
}

// Open connects to the database at url and verifies the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("folio/postgres: open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("folio/postgres: ping: %w", err)
	}
	return New(db), nil
}

// New wraps an already open handle using the pgx driver.
func New(db *sql.DB) *Store {
	return &Store{Store: sqlstore.New(db, Dialect)}
}

func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return pgErr.ConstraintName, true
	}
	return "", false
}
