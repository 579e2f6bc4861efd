// Package storage holds the backend-agnostic storage contract, the registry
// that maps a storage kind ("postgres", "sqlite", ...) to a constructor, and
// the batched loader shared by every backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Repository is the minimal write surface a backend exposes to the loader.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to columns) into the configured
	// table and returns the number of rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config is what every backend constructor receives.
type Config struct {
	Kind    string
	DSN     string
	Table   string
	Columns []string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind. Backends call it
// from init.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s (registered: %s)", cfg.Kind, strings.Join(ListKinds(), ", "))
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
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
