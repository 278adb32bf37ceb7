// Package singer decodes the newline-delimited message stream the upstream
// extractor emits: SCHEMA, RECORD, STATE, and ACTIVATE_VERSION messages,
// one JSON object per line.
//
// The package stays protocol-shaped: it validates message structure and
// ordering (a RECORD may not arrive before its stream's SCHEMA) but does
// not interpret record contents. Moving row data into the destination is a
// separate concern that this connector does not own.
package singer

import (
	"encoding/json"
	"fmt"

	"targetmysql/internal/schema"
)

// MessageType discriminates the upstream message kinds.
type MessageType string

const (
	TypeSchema          MessageType = "SCHEMA"
	TypeRecord          MessageType = "RECORD"
	TypeState           MessageType = "STATE"
	TypeActivateVersion MessageType = "ACTIVATE_VERSION"
)

// Message is one decoded line of the upstream stream. Fields are populated
// according to Type; the rest stay zero.
type Message struct {
	Type   MessageType
	Stream string

	// SCHEMA fields. RawSchema keeps the undecoded schema document for
	// fingerprinting; Schema is its ordered decoded form.
	Schema        schema.TableSchema
	RawSchema     json.RawMessage
	KeyProperties []string

	// RECORD fields.
	Record map[string]any

	// STATE payload, passed through opaquely.
	Value json.RawMessage

	// ACTIVATE_VERSION / RECORD version.
	Version int64
}

// messageJSON is the wire shape shared by all message kinds.
type messageJSON struct {
	Type          string          `json:"type"`
	Stream        string          `json:"stream"`
	Schema        json.RawMessage `json:"schema"`
	KeyProperties []string        `json:"key_properties"`
	Record        map[string]any  `json:"record"`
	Value         json.RawMessage `json:"value"`
	Version       int64           `json:"version"`
}

// DecodeMessage parses one line of input. Unknown message types decode
// without error so that newer upstream emitters do not break the sync;
// callers decide whether to count or skip them.
func DecodeMessage(line []byte) (Message, error) {
	var raw messageJSON
	if err := json.Unmarshal(line, &raw); err != nil {
		return Message{}, fmt.Errorf("singer: decode message: %w", err)
	}
	if raw.Type == "" {
		return Message{}, fmt.Errorf("singer: message has no type")
	}

	m := Message{
		Type:          MessageType(raw.Type),
		Stream:        raw.Stream,
		KeyProperties: raw.KeyProperties,
		Record:        raw.Record,
		Value:         raw.Value,
		Version:       raw.Version,
	}

	switch m.Type {
	case TypeSchema:
		if raw.Stream == "" {
			return Message{}, fmt.Errorf("singer: SCHEMA message has no stream")
		}
		if len(raw.Schema) == 0 {
			return Message{}, fmt.Errorf("singer: SCHEMA message for stream %q has no schema", raw.Stream)
		}
		if err := json.Unmarshal(raw.Schema, &m.Schema); err != nil {
			return Message{}, fmt.Errorf("singer: stream %q: %w", raw.Stream, err)
		}
		m.RawSchema = raw.Schema
	case TypeRecord:
		if raw.Stream == "" {
			return Message{}, fmt.Errorf("singer: RECORD message has no stream")
		}
		if raw.Record == nil {
			return Message{}, fmt.Errorf("singer: RECORD message for stream %q has no record", raw.Stream)
		}
	case TypeActivateVersion:
		if raw.Stream == "" {
			return Message{}, fmt.Errorf("singer: ACTIVATE_VERSION message has no stream")
		}
	}
	return m, nil
}
