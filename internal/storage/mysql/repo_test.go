package mysql

import (
	"strings"
	"testing"
)

// TestFormatDSN covers DSN passthrough, assembly from discrete fields, and
// the required-field error.
func TestFormatDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		want    []string
		wantErr bool
	}{
		{
			name: "explicit dsn wins",
			cfg:  Config{DSN: "loader:secret@tcp(db1:3306)/warehouse", Host: "ignored"},
			want: []string{"loader:secret@tcp(db1:3306)/warehouse"},
		},
		{
			name: "assembled with default port",
			cfg:  Config{Host: "db1", User: "loader", Password: "secret", Database: "warehouse"},
			want: []string{"loader:secret@tcp(db1:3306)/warehouse", "parseTime=true"},
		},
		{
			name: "assembled with explicit port",
			cfg:  Config{Host: "db1", Port: 3307, Database: "warehouse"},
			want: []string{"tcp(db1:3307)/warehouse"},
		},
		{
			name:    "missing host",
			cfg:     Config{Database: "warehouse"},
			wantErr: true,
		},
		{
			name:    "missing database",
			cfg:     Config{Host: "db1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.cfg.FormatDSN()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("FormatDSN() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatDSN() error = %v", err)
			}
			for _, frag := range tt.want {
				if !strings.Contains(got, frag) {
					t.Fatalf("FormatDSN() = %q, want containing %q", got, frag)
				}
			}
		})
	}
}

// TestSplitTableName covers plain and schema-qualified names.
func TestSplitTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, schema, table string
	}{
		{"users", "", "users"},
		{"analytics.users", "analytics", "users"},
		{"a.b.c", "a.b", "c"},
	}
	for _, tt := range tests {
		gotSchema, gotTable := splitTableName(tt.in)
		if gotSchema != tt.schema || gotTable != tt.table {
			t.Fatalf("splitTableName(%q) = %q, %q; want %q, %q", tt.in, gotSchema, gotTable, tt.schema, tt.table)
		}
	}
}
