package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xraph/folio"
	"github.com/xraph/folio/store"
)

var _ store.Store = (*Store)(nil)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements store.Store over database/sql.
type Store struct {
	d    *Dialect
	db   *sql.DB
	q    querier
	inTx bool
}

// New wraps an open database handle.
func New(db *sql.DB, d *Dialect) *Store {
	return &Store{d: d, db: db, q: db}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.d.migrate(ctx, s.db); err != nil {
		return fmt.Errorf("%w: %w", folio.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx runs fn in a database transaction. A Store already bound to a
// transaction runs fn inside it.
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return s.atomic(ctx, func(tx *Store) error { return fn(ctx, tx) })
}

func (s *Store) atomic(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.d.Name, err)
	}
	// A panic in fn must not leave the transaction holding a connection.
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()
	if err := fn(&Store{d: s.d, db: s.db, q: sqlTx, inTx: true}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", folio.ErrTransactionFailed, err)
	}
	return nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.q.ExecContext(ctx, s.d.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.d.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.d.rebind(query), args...)
}

// exists reports whether a row matches.
func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.queryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// uniqueErr translates a unique-constraint failure into the folio sentinel
// for the violated column.
func (s *Store) uniqueErr(err error) error {
	if err == nil {
		return nil
	}
	what, ok := s.d.UniqueViolation(err)
	if !ok {
		return err
	}
	what = strings.ToLower(what)
	switch {
	case strings.Contains(what, "number"):
		return folio.ErrDuplicateInvoiceNumber
	case strings.Contains(what, "sku"):
		return folio.ErrDuplicateSKU
	}
	return folio.ErrAlreadyExists
}

// affected returns notFound when res touched no rows.
func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// where accumulates AND-ed conditions with their arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page appends LIMIT and OFFSET. A non-positive limit means no limit.
func (w *where) page(limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	l := int64(limit)
	if limit <= 0 {
		l = math.MaxInt64
	}
	if offset < 0 {
		offset = 0
	}
	w.args = append(w.args, l, int64(offset))
	return " LIMIT ? OFFSET ?"
}
