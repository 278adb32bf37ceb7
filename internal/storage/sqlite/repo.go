// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. SQLite's loose type affinity accepts the MySQL column type
// names the connector renders, which makes this backend useful for local
// dry runs and for integration tests that need a real catalog without a
// MySQL server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver; replace with your preferred driver if desired.
	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3

	"targetmysql/internal/connector"
)

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is passed directly to database/sql; for example:
	//
	//	"file:target.db?cache=shared"
	//	"file::memory:?cache=shared"
	DSN string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Apply a basic ping with context to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// TableExists reports whether the table is present in sqlite_master.
// SQLite has no schema qualifier; a dotted name matches on its last
// segment so that MySQL-style qualified names still resolve locally.
func (r *Repository) TableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		localName(name),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: table exists %s: %w", name, err)
	}
	return n > 0, nil
}

// Columns returns the table's columns in declaration order via the
// table_info pragma.
func (r *Repository) Columns(ctx context.Context, name string) ([]connector.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, type FROM pragma_table_info(?) ORDER BY cid`,
		localName(name),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns %s: %w", name, err)
	}
	defer rows.Close()

	var out []connector.Column
	for rows.Next() {
		var col connector.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("sqlite: columns %s: scan: %w", name, err)
		}
		out = append(out, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: columns %s: %w", name, err)
	}
	return out, nil
}

// Exec executes a single DDL statement. Schema qualifiers in the statement's
// table name are stripped first, keeping DDL consistent with the last-segment
// matching TableExists and Columns perform.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, localizeStmt(stmt)); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// localizeStmt rewrites the table name of a rendered DDL statement to its
// last quoted segment, dropping the MySQL-style schema qualifier SQLite
// cannot resolve. Statements without a qualified table name pass through
// unchanged.
func localizeStmt(stmt string) string {
	const kw = "TABLE "
	i := strings.Index(stmt, kw)
	if i < 0 {
		return stmt
	}
	rest := stmt[i+len(kw):]

	// The name runs until the first delimiter outside backticks.
	end := 0
	inQuote := false
	for end < len(rest) {
		c := rest[end]
		if c == '`' {
			inQuote = !inQuote
		} else if !inQuote && (c == ' ' || c == '(' || c == ';' || c == '\n') {
			break
		}
		end++
	}
	name := rest[:end]

	j := strings.LastIndex(name, "`.`")
	if j < 0 {
		return stmt
	}
	return stmt[:i+len(kw)] + name[j+2:] + rest[end:]
}

// localName strips a MySQL-style schema qualifier for SQLite.
func localName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
