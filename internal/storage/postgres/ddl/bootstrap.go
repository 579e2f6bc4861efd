package ddl

import (
	"context"

	gddl "heartetl/internal/ddl"
	"heartetl/internal/storage"
)

// ReplaceTable drops the target table if it exists and creates it from def.
func ReplaceTable(ctx context.Context, repo storage.Repository, def gddl.TableDef) error {
	return storage.ExecReplace(ctx, repo, Dialect, def)
}
