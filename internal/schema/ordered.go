package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeOrderedProperties walks a JSON object one token at a time so that the
// resulting Property slice keeps the document's key order. Duplicate keys keep
// the last value but the first position, matching common decoder behavior.
func decodeOrderedProperties(raw []byte) ([]Property, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("schema: decode properties: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("schema: properties must be an object, got %v", tok)
	}

	var (
		props []Property
		index = map[string]int{}
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("schema: decode property name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("schema: property name is not a string: %v", tok)
		}

		var fs FieldSchema
		if err := dec.Decode(&fs); err != nil {
			return nil, fmt.Errorf("schema: property %q: %w", name, err)
		}

		if i, seen := index[name]; seen {
			props[i].Schema = fs
			continue
		}
		index[name] = len(props)
		props = append(props, Property{Name: name, Schema: fs})
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("schema: decode properties: %w", err)
	}
	return props, nil
}
