package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"targetmysql/internal/schema"
)

// fakeRepo implements Inspector and Executor in memory, recording every
// statement it is asked to run.
type fakeRepo struct {
	tables map[string][]Column
	execs  []string

	execErr    error
	existsErr  error
	columnsErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tables: make(map[string][]Column)}
}

func (f *fakeRepo) TableExists(ctx context.Context, name string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.tables[name]
	return ok, nil
}

func (f *fakeRepo) Columns(ctx context.Context, name string) ([]Column, error) {
	if f.columnsErr != nil {
		return nil, f.columnsErr
	}
	return f.tables[name], nil
}

// Exec records the statement and applies a rough interpretation of it to
// the in-memory table map, enough for the connector's re-inspection reads.
func (f *fakeRepo) Exec(ctx context.Context, sql string) error {
	if f.execErr != nil {
		return f.execErr
	}
	f.execs = append(f.execs, sql)
	switch {
	case strings.HasPrefix(sql, "CREATE"):
		name := tableNameFromCreate(sql)
		f.tables[name] = columnsFromCreate(sql)
	case strings.HasPrefix(sql, "ALTER TABLE"):
		name, col := columnFromAlter(sql)
		f.tables[name] = append(f.tables[name], col)
	case strings.HasPrefix(sql, "DROP TABLE"):
		name := strings.TrimSuffix(strings.TrimPrefix(sql, "DROP TABLE "), ";")
		delete(f.tables, unquote(name))
	}
	return nil
}

func unquote(s string) string {
	return strings.ReplaceAll(s, "`", "")
}

func tableNameFromCreate(sql string) string {
	rest := strings.TrimPrefix(sql, "CREATE TEMPORARY TABLE ")
	rest = strings.TrimPrefix(rest, "CREATE TABLE ")
	end := strings.Index(rest, " (")
	return unquote(rest[:end])
}

func columnsFromCreate(sql string) []Column {
	start := strings.Index(sql, "(\n  ")
	body := sql[start+4 : strings.LastIndex(sql, "\n)")]
	var cols []Column
	for _, line := range strings.Split(body, ",\n  ") {
		if strings.HasPrefix(line, "PRIMARY KEY") {
			continue
		}
		name, typ, _ := strings.Cut(line, " ")
		cols = append(cols, Column{Name: unquote(name), Type: typ})
	}
	return cols
}

func columnFromAlter(sql string) (string, Column) {
	rest := strings.TrimSuffix(strings.TrimPrefix(sql, "ALTER TABLE "), ";")
	table, rest, _ := strings.Cut(rest, " ADD COLUMN ")
	name, typ, _ := strings.Cut(rest, " ")
	return unquote(table), Column{Name: unquote(name), Type: typ}
}

func mustSchema(t *testing.T, doc string) schema.TableSchema {
	t.Helper()
	var ts schema.TableSchema
	if err := json.Unmarshal([]byte(doc), &ts); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	return ts
}

// TestPrepareTableCreates verifies that an absent table is created with one
// statement covering every field and the primary-key clause.
func TestPrepareTableCreates(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	conn := New(repo, repo, Config{})
	ts := mustSchema(t, `{"properties": {
		"id": {"type": "integer"},
		"name": {"type": ["string", "null"]},
		"payload": {"type": "object"},
		"updated_at": {"type": "string", "format": "date-time"}
	}}`)

	tbl, err := conn.PrepareTable(context.Background(), "analytics.users", ts, []string{"id"}, false)
	if err != nil {
		t.Fatalf("PrepareTable() error = %v", err)
	}

	if len(repo.execs) != 1 {
		t.Fatalf("executed %d statements, want 1: %v", len(repo.execs), repo.execs)
	}
	want := "CREATE TABLE `analytics`.`users` (\n" +
		"  `id` BIGINT,\n" +
		"  `name` VARCHAR(255),\n" +
		"  `payload` JSON,\n" +
		"  `updated_at` TIMESTAMP,\n" +
		"  PRIMARY KEY (`id`)\n" +
		");"
	if repo.execs[0] != want {
		t.Fatalf("create statement = %q, want %q", repo.execs[0], want)
	}

	if tbl.Name != "analytics.users" || len(tbl.Columns) != 4 {
		t.Fatalf("Table = %+v, want 4 columns on analytics.users", tbl)
	}
	if tbl.Columns[0] != (Column{Name: "id", Type: "BIGINT"}) {
		t.Fatalf("Columns[0] = %+v, want id BIGINT", tbl.Columns[0])
	}
}

// TestPrepareTableStringPrimaryKey verifies the 191-character cap on string
// primary keys while non-key strings keep the configured size.
func TestPrepareTableStringPrimaryKey(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	conn := New(repo, repo, Config{MaxVarcharSize: 1024})
	ts := mustSchema(t, `{"properties": {
		"code": {"type": "string"},
		"label": {"type": "string"}
	}}`)

	if _, err := conn.PrepareTable(context.Background(), "codes", ts, []string{"code"}, false); err != nil {
		t.Fatalf("PrepareTable() error = %v", err)
	}
	stmt := repo.execs[0]
	if !strings.Contains(stmt, "`code` VARCHAR(191)") {
		t.Fatalf("statement %q missing capped key column", stmt)
	}
	if !strings.Contains(stmt, "`label` VARCHAR(1024)") {
		t.Fatalf("statement %q missing full-size non-key column", stmt)
	}
}

// TestPrepareTableEmptySchema verifies that creating from a schema without
// properties fails with SchemaError before any DDL is issued.
func TestPrepareTableEmptySchema(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	conn := New(repo, repo, Config{})

	_, err := conn.PrepareTable(context.Background(), "empty", schema.TableSchema{}, nil, false)
	var se *schema.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("PrepareTable() error = %T (%v), want *schema.SchemaError", err, err)
	}
	if se.Table != "empty" {
		t.Fatalf("SchemaError.Table = %q, want %q", se.Table, "empty")
	}
	if len(repo.execs) != 0 {
		t.Fatalf("executed %d statements, want 0", len(repo.execs))
	}
}

// TestPrepareTableIdempotent verifies that re-preparing an unchanged table
// issues no DDL at all.
func TestPrepareTableIdempotent(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	conn := New(repo, repo, Config{})
	ts := mustSchema(t, `{"properties": {"id": {"type": "integer"}, "name": {"type": "string"}}}`)

	if _, err := conn.PrepareTable(context.Background(), "users", ts, []string{"id"}, false); err != nil {
		t.Fatalf("first PrepareTable() error = %v", err)
	}
	before := len(repo.execs)

	tbl, err := conn.PrepareTable(context.Background(), "users", ts, []string{"id"}, false)
	if err != nil {
		t.Fatalf("second PrepareTable() error = %v", err)
	}
	if len(repo.execs) != before {
		t.Fatalf("second prepare executed %d statements, want 0", len(repo.execs)-before)
	}
	if len(tbl.Columns) != 2 {
		t.Fatalf("Table.Columns = %+v, want 2 columns", tbl.Columns)
	}
}

// TestPrepareTableAddsMissingColumn verifies the additive evolution path:
// exactly one ALTER for the one new field.
func TestPrepareTableAddsMissingColumn(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	conn := New(repo, repo, Config{})
	v1 := mustSchema(t, `{"properties": {"id": {"type": "integer"}}}`)
	v2 := mustSchema(t, `{"properties": {"id": {"type": "integer"}, "email": {"type": ["string", "null"]}}}`)

	if _, err := conn.PrepareTable(context.Background(), "users", v1, []string{"id"}, false); err != nil {
		t.Fatalf("PrepareTable(v1) error = %v", err)
	}
	before := len(repo.execs)

	tbl, err := conn.PrepareTable(context.Background(), "users", v2, []string{"id"}, false)
	if err != nil {
		t.Fatalf("PrepareTable(v2) error = %v", err)
	}

	added := repo.execs[before:]
	if len(added) != 1 {
		t.Fatalf("evolution executed %d statements, want 1: %v", len(added), added)
	}
	want := "ALTER TABLE `users` ADD COLUMN `email` VARCHAR(255);"
	if added[0] != want {
		t.Fatalf("alter statement = %q, want %q", added[0], want)
	}
	if len(tbl.Columns) != 2 || tbl.Columns[1].Name != "email" {
		t.Fatalf("Table.Columns = %+v, want id then email", tbl.Columns)
	}
}

// TestPrepareTableNeverAlters verifies that a present field whose resolved
// type no longer matches the physical column is left untouched.
func TestPrepareTableNeverAlters(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.tables["users"] = []Column{{Name: "id", Type: "INT"}}
	conn := New(repo, repo, Config{})
	ts := mustSchema(t, `{"properties": {"id": {"type": "string"}}}`)

	tbl, err := conn.PrepareTable(context.Background(), "users", ts, nil, false)
	if err != nil {
		t.Fatalf("PrepareTable() error = %v", err)
	}
	if len(repo.execs) != 0 {
		t.Fatalf("executed %d statements, want 0: %v", len(repo.execs), repo.execs)
	}
	if tbl.Columns[0].Type != "INT" {
		t.Fatalf("column type = %q, want original INT preserved", tbl.Columns[0].Type)
	}
}

// TestPrepareTableBadFieldOnEvolve verifies that a malformed field fails the
// evolution path even when its column already exists.
func TestPrepareTableBadFieldOnEvolve(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.tables["users"] = []Column{{Name: "blob", Type: "JSON"}}
	conn := New(repo, repo, Config{})
	// No type, no anyOf.
	ts := schema.TableSchema{Properties: []schema.Property{{Name: "blob"}}}

	_, err := conn.PrepareTable(context.Background(), "users", ts, nil, false)
	var ie *schema.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("PrepareTable() error = %T (%v), want *schema.InputError", err, err)
	}
	if !strings.Contains(err.Error(), "field blob") {
		t.Fatalf("error %q does not name the field", err)
	}
}

// TestPrepareTableExecError verifies that executor failures propagate with
// table context.
func TestPrepareTableExecError(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.execErr = fmt.Errorf("connection reset")
	conn := New(repo, repo, Config{})
	ts := mustSchema(t, `{"properties": {"id": {"type": "integer"}}}`)

	_, err := conn.PrepareTable(context.Background(), "users", ts, nil, false)
	if err == nil || !strings.Contains(err.Error(), "create table users") {
		t.Fatalf("PrepareTable() error = %v, want create table users context", err)
	}
	if !errors.Is(err, repo.execErr) {
		t.Fatalf("PrepareTable() error %v does not wrap the executor failure", err)
	}
}

// TestDropTable verifies the unconditional drop.
func TestDropTable(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.tables["old"] = []Column{{Name: "id", Type: "BIGINT"}}
	conn := New(repo, repo, Config{})

	if err := conn.DropTable(context.Background(), Table{Name: "old"}); err != nil {
		t.Fatalf("DropTable() error = %v", err)
	}
	if got, want := repo.execs[0], "DROP TABLE `old`;"; got != want {
		t.Fatalf("drop statement = %q, want %q", got, want)
	}
	if _, ok := repo.tables["old"]; ok {
		t.Fatalf("table still present after drop")
	}
}

// TestCloneTable verifies that a clone copies column names and types only.
func TestCloneTable(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	conn := New(repo, repo, Config{})
	src := Table{Name: "users", Columns: []Column{
		{Name: "id", Type: "BIGINT"},
		{Name: "name", Type: "VARCHAR(255)"},
	}}

	tbl, err := conn.CloneTable(context.Background(), "users_tmp", src, true)
	if err != nil {
		t.Fatalf("CloneTable() error = %v", err)
	}
	want := "CREATE TEMPORARY TABLE `users_tmp` (\n" +
		"  `id` BIGINT,\n" +
		"  `name` VARCHAR(255)\n" +
		");"
	if repo.execs[0] != want {
		t.Fatalf("clone statement = %q, want %q", repo.execs[0], want)
	}
	if !tbl.Temporary || tbl.Name != "users_tmp" {
		t.Fatalf("Table = %+v, want temporary users_tmp", tbl)
	}
}

// TestPrepareTableLifecycle runs the create/evolve/no-op sequence end to end
// against the in-memory repo.
func TestPrepareTableLifecycle(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	conn := New(repo, repo, Config{})
	ctx := context.Background()

	v1 := mustSchema(t, `{"properties": {"id": {"type": "integer"}, "name": {"type": ["string", "null"]}}}`)
	if _, err := conn.PrepareTable(ctx, "users", v1, []string{"id"}, false); err != nil {
		t.Fatalf("create: %v", err)
	}

	v2 := mustSchema(t, `{"properties": {
		"id": {"type": "integer"},
		"name": {"type": ["string", "null"]},
		"created_at": {"anyOf": [{"type": "string", "format": "date-time"}, {"type": "null"}]}
	}}`)
	tbl, err := conn.PrepareTable(ctx, "users", v2, []string{"id"}, false)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if len(tbl.Columns) != 3 || tbl.Columns[2] != (Column{Name: "created_at", Type: "TIMESTAMP"}) {
		t.Fatalf("Columns = %+v, want created_at TIMESTAMP appended", tbl.Columns)
	}

	before := len(repo.execs)
	if _, err := conn.PrepareTable(ctx, "users", v2, []string{"id"}, false); err != nil {
		t.Fatalf("re-prepare: %v", err)
	}
	if len(repo.execs) != before {
		t.Fatalf("re-prepare executed DDL: %v", repo.execs[before:])
	}
}
