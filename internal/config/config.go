// Package config defines the canonical, JSON-serializable configuration
// model for the target connector. It is intentionally small, explicit, and
// decoded by the standard library, with a light Options helper for typed
// access to free-form sections.
//
// Example (trimmed):
//
//	{
//	  "host": "127.0.0.1",
//	  "user": "root",
//	  "password": "secret",
//	  "database": "analytics",
//	  "default_target_schema": "analytics",
//	  "max_varchar_size": 255,
//	  "storage": { "kind": "mysql" },
//	  "metrics": { "backend": "pushgateway", "options": { "gateway_url": "http://localhost:9091" } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Target is the top-level connector configuration decoded from a config
// file. Connection settings mirror what the upstream orchestrator passes:
// either a full DSN or discrete host/port/user/password/database fields.
type Target struct {
	// DSN is a full driver connection string. When set it overrides the
	// discrete connection fields below.
	DSN string `json:"dsn"`

	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`

	// DefaultTargetSchema is the destination schema used to qualify stream
	// table names that do not carry their own qualifier.
	DefaultTargetSchema string `json:"default_target_schema"`

	// MaxVarcharSize bounds non-key VARCHAR columns. Defaults to 255.
	MaxVarcharSize int `json:"max_varchar_size"`

	// AddRecordMetadata mirrors the upstream flag of the same name. The
	// schema-sync path carries it through without acting on it.
	AddRecordMetadata bool `json:"add_record_metadata"`

	// HardDelete selects hard deletes for activate-version handling, which
	// is parsed but not executed by this connector.
	HardDelete bool `json:"hard_delete"`

	Storage StorageConfig `json:"storage"`
	Runtime Runtime       `json:"runtime"`
	Metrics Metrics       `json:"metrics"`
}

// StorageConfig selects the destination backend.
type StorageConfig struct {
	// Kind selects the storage implementation ("mysql", "sqlite").
	// Defaults to "mysql".
	Kind string `json:"kind"`
}

// Runtime controls concurrency for catalog-mode reconciliation.
type Runtime struct {
	// PrepareWorkers bounds how many streams are reconciled concurrently
	// when preparing a whole catalog. Defaults to 4.
	PrepareWorkers int `json:"prepare_workers"`
}

// Metrics selects and configures a metrics backend. The Options shape is
// defined by the backend implementation; for "pushgateway" typical keys are
// gateway_url and job, for "datadog" addr and namespace.
type Metrics struct {
	Backend string  `json:"backend"`
	Options Options `json:"options"`
}

// Load reads and decodes a Target config file and applies defaults.
func Load(path string) (Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return Target{}, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

	var t Target
	if err := json.NewDecoder(f).Decode(&t); err != nil {
		return Target{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	t.ApplyDefaults()
	return t, nil
}

// ApplyDefaults fills zero-valued fields with their documented defaults.
func (t *Target) ApplyDefaults() {
	if t.MaxVarcharSize == 0 {
		t.MaxVarcharSize = 255
	}
	if t.Port == 0 {
		t.Port = 3306
	}
	if t.Storage.Kind == "" {
		t.Storage.Kind = "mysql"
	}
	if t.Runtime.PrepareWorkers <= 0 {
		t.Runtime.PrepareWorkers = 4
	}
	if t.Metrics.Options == nil {
		t.Metrics.Options = Options{}
	}
}

// TableName qualifies a stream name with the default target schema unless
// the stream already carries a qualifier.
func (t Target) TableName(stream string) string {
	if t.DefaultTargetSchema == "" || strings.Contains(stream, ".") {
		return stream
	}
	return t.DefaultTargetSchema + "." + stream
}
