package schema

import "fmt"

// InputError reports a malformed field schema: a "type" of an unsupported
// shape, or a fragment carrying neither "type" nor "anyOf". It is fatal to
// the field being processed and is never retried.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return "schema: " + e.Msg
}

// SchemaError reports a structurally invalid table schema, such as a
// "properties" object with no field definitions. It is fatal to the
// reconciliation call that encountered it.
type SchemaError struct {
	Table string
	Msg   string
}

func (e *SchemaError) Error() string {
	if e.Table == "" {
		return "schema: " + e.Msg
	}
	return fmt.Sprintf("schema: table %q: %s", e.Table, e.Msg)
}
