// Package connector reconciles destination MySQL tables with incoming
// record schemas: it creates missing tables and adds missing columns, and
// never drops, renames, or retypes a column that already exists.
//
// The connector owns no connection state. It consumes two narrow
// interfaces, Inspector and Executor, that the storage backends implement;
// every call runs on whatever connection or transaction context the backend
// supplies. Failures from those collaborators propagate to the caller
// unmodified (beyond message context) and nothing is retried.
//
// Concurrency: two callers racing PrepareTable for the same absent table can
// both observe "missing" and both attempt CREATE; the database's own DDL
// conflict handling arbitrates. No advisory locking is added here.
package connector

import (
	"context"
	"fmt"
	"slices"

	"targetmysql/internal/ddl"
	"targetmysql/internal/schema"
	"targetmysql/internal/sqltype"
)

// Capability flags for this connector. Column types are never altered in
// place; a field whose type widens in a later schema version keeps its
// original column type.
const (
	AllowColumnAdd    = true
	AllowColumnRename = true
	AllowColumnAlter  = false
	AllowMergeUpsert  = true
	AllowTempTables   = true
)

// Column is one physical column of a destination table, as reported by the
// metadata inspector or as created by the connector.
type Column struct {
	Name string
	Type string
}

// Table is a handle to a reconciled destination table, ready for writes.
type Table struct {
	Name      string
	Columns   []Column
	Temporary bool
}

// Inspector answers metadata questions about the destination.
type Inspector interface {
	// TableExists reports whether the (possibly schema-qualified) table exists.
	TableExists(ctx context.Context, name string) (bool, error)
	// Columns returns the table's current columns in ordinal order.
	Columns(ctx context.Context, name string) ([]Column, error)
}

// Executor runs a single DDL statement, raising on failure.
type Executor interface {
	Exec(ctx context.Context, sql string) error
}

// Config carries the connector's knobs. The zero value is usable.
type Config struct {
	// MaxVarcharSize bounds non-key VARCHAR columns. Zero means the
	// package default (255).
	MaxVarcharSize int
}

// Connector reconciles tables against incoming schemas. Construct with New;
// the zero value is not usable.
type Connector struct {
	inspector Inspector
	executor  Executor
	cfg       Config
}

// New returns a Connector that inspects and executes through the given
// collaborators.
func New(inspector Inspector, executor Executor, cfg Config) *Connector {
	if cfg.MaxVarcharSize <= 0 {
		cfg.MaxVarcharSize = sqltype.DefaultMaxVarcharSize
	}
	return &Connector{inspector: inspector, executor: executor, cfg: cfg}
}

// PrepareTable brings the named table into alignment with the given schema.
//
// If the table does not exist it is created with one column per schema
// field, in field order, with the primary-key constraint covering
// primaryKeys. If it exists, each schema field missing from the current
// column set is added with one ALTER TABLE ... ADD COLUMN statement; fields
// already present are left untouched even when their resolved type differs
// from the physical column type.
//
// A schema with no field definitions fails the create path with
// *schema.SchemaError before any DDL is issued.
func (c *Connector) PrepareTable(
	ctx context.Context,
	name string,
	ts schema.TableSchema,
	primaryKeys []string,
	asTemp bool,
) (Table, error) {
	exists, err := c.inspector.TableExists(ctx, name)
	if err != nil {
		return Table{}, fmt.Errorf("prepare table %s: %w", name, err)
	}
	if !exists {
		return c.createTable(ctx, name, ts, primaryKeys, asTemp)
	}
	return c.addMissingColumns(ctx, name, ts, primaryKeys)
}

// createTable builds and executes a single CREATE TABLE for all fields.
func (c *Connector) createTable(
	ctx context.Context,
	name string,
	ts schema.TableSchema,
	primaryKeys []string,
	asTemp bool,
) (Table, error) {
	if len(ts.Properties) == 0 {
		return Table{}, &schema.SchemaError{Table: name, Msg: "schema does not define properties"}
	}

	def := ddl.TableDef{Name: name, Temporary: asTemp}
	for _, p := range ts.Properties {
		isPK := slices.Contains(primaryKeys, p.Name)
		typ, err := sqltype.Resolve(p.Schema, c.cfg.MaxVarcharSize, isPK)
		if err != nil {
			return Table{}, fmt.Errorf("prepare table %s: field %s: %w", name, p.Name, err)
		}
		def.Columns = append(def.Columns, ddl.ColumnDef{
			Name:       p.Name,
			SQLType:    typ.String(),
			PrimaryKey: isPK,
		})
	}

	stmt, err := ddl.BuildCreateTableSQL(def)
	if err != nil {
		return Table{}, fmt.Errorf("prepare table %s: %w", name, err)
	}
	if err := c.executor.Exec(ctx, stmt); err != nil {
		return Table{}, fmt.Errorf("create table %s: %w", name, err)
	}

	out := Table{Name: name, Temporary: asTemp}
	for _, col := range def.Columns {
		out.Columns = append(out.Columns, Column{Name: col.Name, Type: col.SQLType})
	}
	return out, nil
}

// addMissingColumns diffs the schema against the current column set by name
// only and issues one additive ALTER per missing field. Every field's type
// is resolved, present or not, so malformed fields fail here the same way
// they would on the create path.
func (c *Connector) addMissingColumns(
	ctx context.Context,
	name string,
	ts schema.TableSchema,
	primaryKeys []string,
) (Table, error) {
	current, err := c.inspector.Columns(ctx, name)
	if err != nil {
		return Table{}, fmt.Errorf("prepare table %s: %w", name, err)
	}
	have := make(map[string]bool, len(current))
	for _, col := range current {
		have[col.Name] = true
	}

	changed := false
	for _, p := range ts.Properties {
		isPK := slices.Contains(primaryKeys, p.Name)
		typ, err := sqltype.Resolve(p.Schema, c.cfg.MaxVarcharSize, isPK)
		if err != nil {
			return Table{}, fmt.Errorf("prepare table %s: field %s: %w", name, p.Name, err)
		}
		if have[p.Name] {
			continue
		}
		stmt, err := ddl.BuildAddColumnSQL(name, p.Name, typ.String())
		if err != nil {
			return Table{}, fmt.Errorf("prepare table %s: %w", name, err)
		}
		if err := c.executor.Exec(ctx, stmt); err != nil {
			return Table{}, fmt.Errorf("add column %s.%s: %w", name, p.Name, err)
		}
		changed = true
	}

	if changed {
		current, err = c.inspector.Columns(ctx, name)
		if err != nil {
			return Table{}, fmt.Errorf("prepare table %s: %w", name, err)
		}
	}
	return Table{Name: name, Columns: current}, nil
}

// DropTable drops the table unconditionally. There is no soft delete and no
// confirmation step; callers gate this themselves.
func (c *Connector) DropTable(ctx context.Context, t Table) error {
	stmt, err := ddl.BuildDropTableSQL(t.Name)
	if err != nil {
		return err
	}
	if err := c.executor.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("drop table %s: %w", t.Name, err)
	}
	return nil
}

// CloneTable creates newName with the source table's column names and types
// only. Constraints and data are not copied.
func (c *Connector) CloneTable(ctx context.Context, newName string, source Table, asTemp bool) (Table, error) {
	def := ddl.TableDef{Name: newName, Temporary: asTemp}
	for _, col := range source.Columns {
		def.Columns = append(def.Columns, ddl.ColumnDef{Name: col.Name, SQLType: col.Type})
	}
	stmt, err := ddl.BuildCreateTableSQL(def)
	if err != nil {
		return Table{}, fmt.Errorf("clone table %s: %w", newName, err)
	}
	if err := c.executor.Exec(ctx, stmt); err != nil {
		return Table{}, fmt.Errorf("clone table %s: %w", newName, err)
	}
	return Table{Name: newName, Columns: source.Columns, Temporary: asTemp}, nil
}
