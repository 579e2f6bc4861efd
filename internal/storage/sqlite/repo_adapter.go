package sqlite

import (
	"context"
	"fmt"

	gddl "heartetl/internal/ddl"
	"heartetl/internal/storage"
	sqliteddl "heartetl/internal/storage/sqlite/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo adapts *sqlite.Repository to the storage.Repository interface,
// adding a Close method that calls the cleanup function returned by
// NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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

	storage.RegisterDDL("sqlite",
		func(ctx context.Context, repo storage.Repository, def gddl.TableDef) error {
			if err := sqliteddl.ReplaceTable(ctx, repo, def); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}
