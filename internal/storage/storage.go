// Package storage contains the destination-agnostic contracts consumed by
// the connector, plus a registry of concrete backends.
//
// A backend supplies metadata inspection and DDL execution over one live
// database handle. Connection lifecycle, credentials, and pooling live
// entirely inside the backend packages; the rest of the program sees only
// the Repository interface.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"targetmysql/internal/connector"
)

// Repository is a live destination handle: the connector's Inspector and
// Executor plus cleanup.
type Repository interface {
	connector.Inspector
	connector.Executor
	Close()
}

// Config selects and configures a backend. DSN wins when set; otherwise the
// discrete fields are used by backends that can build a DSN from them.
type Config struct {
	Kind     string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// Factory creates a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for a backend kind. It is
// typically called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New builds a Repository for cfg.Kind. Unregistered kinds are an error.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered backend kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
