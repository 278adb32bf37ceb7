package sqltype

import (
	"slices"

	"targetmysql/internal/schema"
)

// DefaultMaxVarcharSize is the VARCHAR length used when the caller's
// configuration does not say otherwise.
const DefaultMaxVarcharSize = 255

// MaxVarcharPrimaryKeySize caps VARCHAR primary-key columns. MySQL limits an
// indexed key to 767 bytes on common configurations; at 4 bytes per utf8mb4
// character that leaves 767/4 ~= 191 characters.
const MaxVarcharPrimaryKeySize = 191

// Resolve maps one field schema to a single column type.
//
// The field is first normalized into a list of single-type candidates: a
// scalar "type" yields one candidate, a "type" list yields one per entry
// (each inheriting the field's format), and "anyOf" branches are candidates
// as-is. Each candidate maps independently to a provisional type, and the
// candidates reduce to one winner via the fixed precedence order.
//
// VARCHAR sizing is primary-key aware: key columns are capped at
// MaxVarcharPrimaryKeySize regardless of maxVarcharSize. Fields whose
// candidates all drop out (e.g. a bare "null" type) fall back to the same
// primary-key-aware VARCHAR default.
//
// A field carrying neither "type" nor "anyOf" fails with *schema.InputError.
func Resolve(f schema.FieldSchema, maxVarcharSize int, isPrimaryKey bool) (Type, error) {
	candidates, err := expand(f)
	if err != nil {
		return Type{}, err
	}

	picked := make([]Type, 0, len(candidates))
	for _, c := range candidates {
		if t, ok := pickIndividual(c); ok {
			picked = append(picked, t)
		}
	}
	return pickBest(picked, maxVarcharSize, isPrimaryKey), nil
}

// expand normalizes a field into single-source candidates. An empty "type"
// list counts as absent, so it defers to anyOf and an otherwise bare field
// is an input error.
func expand(f schema.FieldSchema) ([]schema.FieldSchema, error) {
	switch {
	case len(f.Types) > 0:
		out := make([]schema.FieldSchema, 0, len(f.Types))
		for _, name := range f.Types {
			out = append(out, schema.FieldSchema{
				Types:  []string{name},
				Format: f.Format,
			})
		}
		return out, nil
	case len(f.AnyOf) > 0:
		return f.AnyOf, nil
	default:
		return nil, &schema.InputError{Msg: "neither type nor anyOf present, unable to determine type"}
	}
}

// pickIndividual maps one candidate to a provisional type. It returns
// ok == false when the candidate contributes nothing (a "null" type).
//
// The dispatch order is significant: the date-time format check runs ahead
// of the generic string fallback, and "decimal" routes to BIGINT, a quirk
// downstream writers rely on.
func pickIndividual(c schema.FieldSchema) (Type, bool) {
	switch {
	case slices.Contains(c.Types, "null"):
		return Type{}, false
	case slices.Contains(c.Types, "integer"):
		return Type{Kind: KindBigint}, true
	case slices.Contains(c.Types, "decimal"):
		return Type{Kind: KindBigint}, true
	case slices.Contains(c.Types, "object"):
		return Type{Kind: KindJSON}, true
	case slices.Contains(c.Types, "array"):
		return Type{Kind: KindJSON}, true
	case c.Format == "date-time":
		return Type{Kind: KindTimestamp}, true
	default:
		return primitiveType(c)
	}
}

// primitiveType is the generic JSON-Schema-to-SQL-primitive fallback for
// candidates not claimed by the dispatch above. It is a package variable so
// callers with non-standard primitive policies can swap it out.
var primitiveType = defaultPrimitiveType

func defaultPrimitiveType(c schema.FieldSchema) (Type, bool) {
	switch {
	case slices.Contains(c.Types, "string"):
		switch c.Format {
		case "date":
			return Type{Kind: KindDate}, true
		case "time":
			return Type{Kind: KindTime}, true
		case "date-time":
			return Type{Kind: KindDatetime}, true
		}
		return Type{Kind: KindVarchar}, true
	case slices.Contains(c.Types, "number"):
		return Type{Kind: KindDecimal}, true
	case slices.Contains(c.Types, "boolean"):
		return Type{Kind: KindBoolean}, true
	default:
		// Unknown type names get the most permissive representation.
		return Type{Kind: KindVarchar}, true
	}
}

// pickBest reduces the provisional types to one winner by scanning the
// precedence order. VARCHAR winners (and the no-survivor fallback) are sized
// here, where primary-key membership is known.
func pickBest(candidates []Type, maxVarcharSize int, isPrimaryKey bool) Type {
	for _, kind := range precedence {
		for _, c := range candidates {
			if c.Kind != kind {
				continue
			}
			if kind == KindVarchar {
				return sizedVarchar(maxVarcharSize, isPrimaryKey)
			}
			return c
		}
	}
	return sizedVarchar(maxVarcharSize, isPrimaryKey)
}

func sizedVarchar(maxVarcharSize int, isPrimaryKey bool) Type {
	if isPrimaryKey {
		return Varchar(MaxVarcharPrimaryKeySize)
	}
	if maxVarcharSize <= 0 {
		maxVarcharSize = DefaultMaxVarcharSize
	}
	return Varchar(maxVarcharSize)
}
