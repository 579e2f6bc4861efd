package storage

import (
	"context"
	"fmt"
	"sync"

	"heartetl/internal/ddl"
)

// DDLBootstrapper replaces the table described by def: it drops any
// existing table of that name and creates it again, using the backend's
// dialect. Backends register one per storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, def ddl.TableDef) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// ReplaceTable runs the DDLBootstrapper registered for kind. Callers stay
// backend-agnostic: they pass the inferred definition and an open
// Repository.
func ReplaceTable(ctx context.Context, kind string, repo Repository, def ddl.TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, def)
}

// ExecReplace is the shared DDLBootstrapper body: it renders DROP and CREATE
// with d and executes both through repo.Exec.
func ExecReplace(ctx context.Context, repo Repository, d ddl.Dialect, def ddl.TableDef) error {
	drop, err := d.DropTable(def.FQN)
	if err != nil {
		return err
	}
	create, err := d.CreateTable(def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, drop); err != nil {
		return fmt.Errorf("drop %s: %w", def.FQN, err)
	}
	if err := repo.Exec(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", def.FQN, err)
	}
	return nil
}
