package ddl

import (
	"context"
	"strings"

	gddl "heartetl/internal/ddl"
	"heartetl/internal/storage"
)

// Dialect renders MySQL DDL with `backtick` identifiers.
var Dialect = gddl.Dialect{
	Name:       "mysql ddl",
	QuoteIdent: QuoteIdent,
	MapType:    MapType,
}

// QuoteIdent backtick-quotes one identifier, doubling embedded backticks.
func QuoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// ReplaceTable drops the target table if it exists and creates it from def.
func ReplaceTable(ctx context.Context, repo storage.Repository, def gddl.TableDef) error {
	return storage.ExecReplace(ctx, repo, Dialect, def)
}
