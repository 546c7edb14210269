// Package sqlstore is the database/sql implementation shared by the sqlite
// and postgres backends. A Dialect supplies what differs between engines:
// placeholder syntax, time encoding, unique-violation detection and DDL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect describes one SQL engine.
type Dialect struct {
	// Name prefixes error messages, e.g. "folio/sqlite".
	Name string
	// Dollar switches ? placeholders to $1, $2, ...
	Dollar bool
	// TimeArg encodes a timestamp for a query argument.
	TimeArg func(time.Time) any
	// UniqueViolation reports whether err is a uniqueness failure and, if
	// so, a description naming the violated constraint or column.
	UniqueViolation func(err error) (string, bool)
	// Migrations run in order, each once.
	Migrations []Migration
}

// Migration is one versioned schema change.
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// rebind rewrites ? placeholders for dollar dialects.
func (d *Dialect) rebind(query string) string {
	if !d.Dollar {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d *Dialect) timeArg(t time.Time) any {
	return d.TimeArg(t.UTC())
}

func (d *Dialect) timePtrArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.timeArg(*t)
}

const migrationsTable = `
CREATE TABLE IF NOT EXISTS folio_migrations (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TEXT NOT NULL
)`

// migrate applies every migration not yet recorded in folio_migrations.
// Each migration runs in its own transaction together with its record.
func (d *Dialect) migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, migrationsTable); err != nil {
		return fmt.Errorf("%s: create migrations table: %w", d.Name, err)
	}

	applied := make(map[string]bool)
	rows, err := db.QueryContext(ctx, `SELECT version FROM folio_migrations`)
	if err != nil {
		return fmt.Errorf("%s: read migrations: %w", d.Name, err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range d.Migrations {
		if applied[m.Version] {
			continue
		}
		if err := d.apply(ctx, db, m); err != nil {
			return fmt.Errorf("%s: migration %s (%s): %w", d.Name, m.Version, m.Name, err)
		}
	}
	return nil
}

func (d *Dialect) apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range splitStatements(m.SQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		d.rebind(`INSERT INTO folio_migrations (version, name, applied_at) VALUES (?, ?, ?)`),
		m.Version, m.Name, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}

// splitStatements splits a migration body on semicolons. Migration SQL
// never contains semicolons inside literals.
func splitStatements(body string) []string {
	var out []string
	for _, s := range strings.Split(body, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
