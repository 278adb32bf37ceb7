// This file adds a lightweight linter/validator for Target values. It
// performs static checks over a decoded Target and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Target.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "metrics.backend"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateTarget performs static validation / linting of a Target.
//
// It does not mutate the target. Instead it returns a slice of Issue
// values; callers may decide whether to treat warnings as fatal or not.
func ValidateTarget(t Target) []Issue {
	var issues []Issue

	issues = append(issues, validateConnection(t)...)
	issues = append(issues, validateSizing(t)...)
	issues = append(issues, validateMetrics(t.Metrics)...)

	return issues
}

// validateConnection checks that the target can actually reach a database.
func validateConnection(t Target) []Issue {
	var issues []Issue

	if strings.TrimSpace(t.DSN) != "" {
		return issues
	}

	switch t.Storage.Kind {
	case "", "mysql":
		if strings.TrimSpace(t.Host) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "host",
				Message:  "host is required when no dsn is given",
			})
		}
		if strings.TrimSpace(t.Database) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "database",
				Message:  "database is required when no dsn is given",
			})
		}
		if strings.TrimSpace(t.User) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "user",
				Message:  "no user set; the driver will attempt an anonymous login",
			})
		}
	case "sqlite":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dsn",
			Message:  "sqlite storage requires a dsn (e.g. file:target.db)",
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q", t.Storage.Kind),
		})
	}

	return issues
}

// validateSizing checks the VARCHAR sizing knobs against MySQL limits.
func validateSizing(t Target) []Issue {
	var issues []Issue

	if t.MaxVarcharSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "max_varchar_size",
			Message:  "max_varchar_size must not be negative",
		})
	}
	// 65535 bytes is the absolute VARCHAR ceiling; utf8mb4 caps the
	// character count well below that.
	if t.MaxVarcharSize > 16383 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "max_varchar_size",
			Message:  "values above 16383 exceed the utf8mb4 VARCHAR limit on most servers",
		})
	}

	return issues
}

// validateMetrics checks the metrics backend selection.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none", "pushgateway", "datadog":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q (want pushgateway, datadog, or none)", m.Backend),
		})
	}
	if m.Backend == "datadog" && m.Options.String("addr", "") == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.options.addr",
			Message:  "datadog backend requires a dogstatsd addr",
		})
	}

	return issues
}
