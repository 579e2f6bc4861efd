package mysql

import (
	"context"
	"fmt"

	gddl "heartetl/internal/ddl"
	"heartetl/internal/storage"
	myddl "heartetl/internal/storage/mysql/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

// init registers the "mysql" backend and its DDL bootstrapper.
func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mysql",
		func(ctx context.Context, repo storage.Repository, def gddl.TableDef) error {
			if err := myddl.ReplaceTable(ctx, repo, def); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}

// wrappedRepo adapts *mysql.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close closes the underlying connection pool.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
