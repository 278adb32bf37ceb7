package ddl

// ColumnDef describes a single column in a table definition produced or
// consumed by ddl.
//
// Fields:
//   - Name: logical column name (unquoted; quoting/escaping happens at render time)
//   - SQLType: rendered SQL type (e.g. BIGINT, VARCHAR(255), JSON)
//   - PrimaryKey: whether the column is part of the primary key
//
// Nullability is not modeled here: the reconciliation path leaves columns
// nullable and lets writers enforce required fields.
type ColumnDef struct {
	Name       string
	SQLType    string
	PrimaryKey bool
}

// TableDef holds a table name and an ordered list of columns. The name may
// be schema-qualified in dotted form (e.g. "analytics.users") and is
// quoted/escaped by the renderers. Temporary tables do not outlive the
// session that creates them.
type TableDef struct {
	Name      string
	Columns   []ColumnDef
	Temporary bool
}
