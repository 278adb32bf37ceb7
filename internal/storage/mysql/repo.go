// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and the go-sql-driver. Table metadata comes from
// information_schema so that existence checks and column listings see the
// same catalog the server enforces.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"targetmysql/internal/connector"
)

// Config holds MySQL repository configuration. DSN wins when set; otherwise
// a DSN is assembled from the discrete fields with the driver defaults
// (port 3306, tcp).
type Config struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// FormatDSN returns the effective driver DSN for the config.
func (c Config) FormatDSN() (string, error) {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN, nil
	}
	if c.Host == "" || c.Database == "" {
		return "", fmt.Errorf("mysql: host and database are required when no DSN is given")
	}
	port := c.Port
	if port == 0 {
		port = 3306
	}
	dc := mysql.NewConfig()
	dc.User = c.User
	dc.Passwd = c.Password
	dc.Net = "tcp"
	dc.Addr = c.Host + ":" + strconv.Itoa(port)
	dc.DBName = c.Database
	dc.ParseTime = true
	return dc.FormatDSN(), nil
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// NewRepository opens a MySQL connection and returns a Repository plus a
// Close function for cleanup. The connection is pinged with a short timeout
// to fail fast on bad credentials or unreachable hosts.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn, err := cfg.FormatDSN()
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// TableExists reports whether the table is present in information_schema.
// A dotted name selects an explicit schema; otherwise the connection's
// current database is used.
func (r *Repository) TableExists(ctx context.Context, name string) (bool, error) {
	schemaName, tableName := splitTableName(name)

	var n int
	var err error
	if schemaName == "" {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM information_schema.tables
			 WHERE table_schema = DATABASE() AND table_name = ?`,
			tableName,
		).Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM information_schema.tables
			 WHERE table_schema = ? AND table_name = ?`,
			schemaName, tableName,
		).Scan(&n)
	}
	if err != nil {
		return false, fmt.Errorf("mysql: table exists %s: %w", name, err)
	}
	return n > 0, nil
}

// Columns returns the table's columns in ordinal order, with the column
// type as MySQL reports it (e.g. "varchar(255)", "bigint").
func (r *Repository) Columns(ctx context.Context, name string) ([]connector.Column, error) {
	schemaName, tableName := splitTableName(name)

	query := `SELECT column_name, column_type FROM information_schema.columns
	          WHERE table_schema = DATABASE() AND table_name = ?
	          ORDER BY ordinal_position`
	args := []any{tableName}
	if schemaName != "" {
		query = `SELECT column_name, column_type FROM information_schema.columns
		         WHERE table_schema = ? AND table_name = ?
		         ORDER BY ordinal_position`
		args = []any{schemaName, tableName}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: columns %s: %w", name, err)
	}
	defer rows.Close()

	var out []connector.Column
	for rows.Next() {
		var col connector.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("mysql: columns %s: scan: %w", name, err)
		}
		out = append(out, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: columns %s: %w", name, err)
	}
	return out, nil
}

// Exec executes a single DDL statement.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// splitTableName splits "schema.table" into its parts. Names without a dot
// have an empty schema part.
func splitTableName(name string) (schemaName, tableName string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
