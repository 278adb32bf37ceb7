// Package sqltype resolves JSON Schema field descriptions into concrete
// MySQL column types. The functions here are pure and deterministic, which
// makes them straightforward to test and reuse.
package sqltype

import "fmt"

// Kind is a SQL column type tag. The vocabulary is closed; VARCHAR is the
// only kind that carries an extra parameter (its length).
type Kind string

const (
	KindJSON      Kind = "JSON"
	KindVarchar   Kind = "VARCHAR"
	KindTimestamp Kind = "TIMESTAMP"
	KindDatetime  Kind = "DATETIME"
	KindDate      Kind = "DATE"
	KindTime      Kind = "TIME"
	KindDecimal   Kind = "DECIMAL"
	KindBigint    Kind = "BIGINT"
	KindInteger   Kind = "INTEGER"
	KindBoolean   Kind = "BOOLEAN"
)

// precedence is the fixed reduction order used when a field admits several
// candidate types: the earliest (most permissive) kind present wins. A
// nullable string-or-integer union therefore resolves to VARCHAR, not BIGINT.
var precedence = []Kind{
	KindJSON,
	KindVarchar,
	KindTimestamp,
	KindDatetime,
	KindDate,
	KindTime,
	KindDecimal,
	KindBigint,
	KindInteger,
	KindBoolean,
}

// Type is a resolved column type: a Kind plus the VARCHAR length when
// Kind == KindVarchar. It is a value, immutable once produced.
type Type struct {
	Kind Kind
	Size int
}

// String renders the type the way it appears in DDL, e.g. "VARCHAR(255)".
func (t Type) String() string {
	if t.Kind == KindVarchar {
		return fmt.Sprintf("VARCHAR(%d)", t.Size)
	}
	return string(t.Kind)
}

// Varchar returns a VARCHAR type of the given length.
func Varchar(size int) Type {
	return Type{Kind: KindVarchar, Size: size}
}
