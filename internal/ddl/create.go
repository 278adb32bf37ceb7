// Package ddl renders MySQL DDL statements from a small table model.
//
// The builders here:
//
//   - Use MySQL identifier quoting: `schema`.`table`, `col`.
//   - Render PRIMARY KEY constraints as a separate clause.
//   - Emit CREATE TEMPORARY TABLE for TableDef.Temporary.
//
// Statements are returned as strings so that callers can inspect or log
// them before handing them to an executor.
package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// The generated statement has the form:
//
//	CREATE [TEMPORARY] TABLE `schema`.`table` (
//	  `col1` TYPE,
//	  `col2` TYPE,
//	  PRIMARY KEY (`pk1`, `pk2`)
//	);
//
// The function validates that:
//   - TableDef.Name is non-empty.
//   - At least one column is present.
//   - Each column has a non-empty Name and SQLType.
func BuildCreateTableSQL(t TableDef) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		colName := strings.TrimSpace(c.Name)
		if colName == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", name)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", colName)
		}

		var sb strings.Builder
		sb.WriteString(quoteIdent(colName))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quoteIdent(colName))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	keyword := "CREATE TABLE"
	if t.Temporary {
		keyword = "CREATE TEMPORARY TABLE"
	}

	stmt := fmt.Sprintf(
		"%s %s (\n  %s\n);",
		keyword,
		quoteName(name),
		strings.Join(cols, ",\n  "),
	)
	return stmt, nil
}

// quoteIdent quotes a single identifier segment using MySQL backtick
// syntax, escaping any embedded backticks.
//
//	name      -> `name`
//	wei`rd    -> `wei``rd`
func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// quoteName quotes a possibly schema-qualified table name, e.g.:
//
//	"analytics.users" -> `analytics`.`users`
//	"users"           -> `users`
func quoteName(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}
