// Package schema models the JSON Schema fragments that describe incoming
// record fields, plus the table-level schema built from them.
//
// The shapes accepted here mirror what the upstream protocol emits for a
// single field:
//
//   - {"type": "integer"}                          scalar type
//   - {"type": ["string", "null"]}                 type alternatives
//   - {"anyOf": [{...}, {...}]}                    union of sub-schemas
//
// A fragment must carry exactly one of "type" or "anyOf". Any other shape
// for "type" (object, number, ...) is rejected at decode time.
package schema

import (
	"encoding/json"
	"fmt"
)

// FieldSchema is one JSON Schema fragment describing one record field.
//
// Types holds the value of "type" as a list of alternatives: a scalar
// "type" decodes to a one-element list. An empty list decodes as given but
// behaves like an absent "type" during resolution.
//
// AnyOf holds the branches of an "anyOf" union; each branch carries its own
// Format, whereas Types alternatives inherit the fragment's Format.
type FieldSchema struct {
	Types  []string
	Format string
	AnyOf  []FieldSchema
}

// fieldSchemaJSON is the raw wire shape of a FieldSchema.
type fieldSchemaJSON struct {
	Type   json.RawMessage `json:"type"`
	Format string          `json:"format"`
	AnyOf  []FieldSchema   `json:"anyOf"`
}

// UnmarshalJSON decodes the polymorphic "type or anyOf" wire form. A "type"
// that is neither a string nor a list of strings yields an InputError.
func (f *FieldSchema) UnmarshalJSON(b []byte) error {
	var raw fieldSchemaJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*f = FieldSchema{Format: raw.Format, AnyOf: raw.AnyOf}

	if len(raw.Type) == 0 || string(raw.Type) == "null" {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw.Type, &single); err == nil {
		f.Types = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(raw.Type, &many); err == nil {
		if many == nil {
			many = []string{}
		}
		f.Types = many
		return nil
	}
	return &InputError{Msg: fmt.Sprintf("invalid shape for jsonschema type: %s (want string or list)", raw.Type)}
}

// Defined reports whether the fragment carries at least one "type"
// alternative or an "anyOf". Resolution of an undefined fragment fails with
// an InputError.
func (f FieldSchema) Defined() bool {
	return len(f.Types) > 0 || len(f.AnyOf) > 0
}

// Property is one named field of a table schema.
type Property struct {
	Name   string
	Schema FieldSchema
}

// TableSchema is the target state for one destination table: the ordered
// field list from the record schema's "properties" object. Order is the
// insertion order of the source document and determines column order at
// CREATE time only.
type TableSchema struct {
	Properties []Property
}

// UnmarshalJSON decodes a full record schema object, keeping the key order
// of "properties". encoding/json maps do not preserve order, so the
// properties object is walked token by token.
func (s *TableSchema) UnmarshalJSON(b []byte) error {
	var raw struct {
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.Properties = nil
	if len(raw.Properties) == 0 || string(raw.Properties) == "null" {
		return nil
	}
	props, err := decodeOrderedProperties(raw.Properties)
	if err != nil {
		return err
	}
	s.Properties = props
	return nil
}

// Get returns the schema for the named field and whether it exists.
func (s TableSchema) Get(name string) (FieldSchema, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return FieldSchema{}, false
}

// Names returns the field names in declaration order.
func (s TableSchema) Names() []string {
	out := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		out[i] = p.Name
	}
	return out
}
