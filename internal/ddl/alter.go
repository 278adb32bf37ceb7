package ddl

import (
	"fmt"
	"strings"
)

// BuildAddColumnSQL renders the additive ALTER statement used when a new
// field appears in an evolved schema:
//
//	ALTER TABLE `schema`.`table` ADD COLUMN `col` TYPE;
//
// This is the only ALTER the reconciler ever issues; changing the type of
// an existing column is not supported.
func BuildAddColumnSQL(tableName, columnName, sqlType string) (string, error) {
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	columnName = strings.TrimSpace(columnName)
	if columnName == "" {
		return "", fmt.Errorf("ddl: column name must not be empty")
	}
	sqlType = strings.TrimSpace(sqlType)
	if sqlType == "" {
		return "", fmt.Errorf("ddl: column %s missing SQL type", columnName)
	}

	return fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN %s %s;",
		quoteName(tableName),
		quoteIdent(columnName),
		sqlType,
	), nil
}

// BuildDropTableSQL renders an unconditional DROP TABLE statement.
// Gating the destruction is the caller's responsibility.
func BuildDropTableSQL(tableName string) (string, error) {
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	return fmt.Sprintf("DROP TABLE %s;", quoteName(tableName)), nil
}
