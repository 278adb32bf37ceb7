package singer

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"targetmysql/internal/schema"
)

// Stream tracks the per-stream state accumulated while draining a message
// sequence: the active schema, its key properties, and counters.
type Stream struct {
	Name          string
	Schema        schema.TableSchema
	KeyProperties []string
	Records       int64

	// fingerprint is an xxh3 hash of the raw SCHEMA document. An unchanged
	// fingerprint on a repeated SCHEMA message means the destination table
	// needs no re-reconciliation.
	fingerprint uint64
}

// Registry holds the streams seen so far in one sync run. It is not safe
// for concurrent use; one run drains its input on a single goroutine.
type Registry struct {
	streams map[string]*Stream
}

// NewRegistry returns an empty stream registry.
func NewRegistry() *Registry {
	return &Registry{streams: map[string]*Stream{}}
}

// ApplySchema records a SCHEMA message and reports whether the stream's
// schema actually changed (first sight counts as changed). Unchanged
// schemas keep the existing state so repeated SCHEMA messages are cheap.
func (r *Registry) ApplySchema(m Message) (*Stream, bool) {
	fp := xxh3.Hash(m.RawSchema)
	s, ok := r.streams[m.Stream]
	if ok && s.fingerprint == fp {
		return s, false
	}
	if !ok {
		s = &Stream{Name: m.Stream}
		r.streams[m.Stream] = s
	}
	s.Schema = m.Schema
	s.KeyProperties = m.KeyProperties
	s.fingerprint = fp
	return s, true
}

// ApplyRecord validates a RECORD message against the stream state: the
// stream must have announced a schema, and the record must carry every key
// property.
func (r *Registry) ApplyRecord(m Message) (*Stream, error) {
	s, ok := r.streams[m.Stream]
	if !ok {
		return nil, fmt.Errorf("singer: schema message has not been sent for %s", m.Stream)
	}
	for _, key := range s.KeyProperties {
		if _, ok := m.Record[key]; !ok {
			return nil, fmt.Errorf("singer: record for stream %s is missing key property %s", m.Stream, key)
		}
	}
	s.Records++
	return s, nil
}

// Get returns the stream state by name.
func (r *Registry) Get(name string) (*Stream, bool) {
	s, ok := r.streams[name]
	return s, ok
}

// Len returns the number of streams seen.
func (r *Registry) Len() int {
	return len(r.streams)
}
