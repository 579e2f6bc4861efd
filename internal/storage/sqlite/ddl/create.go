package ddl

import (
	"strings"

	gddl "heartetl/internal/ddl"
)

// Dialect renders SQLite DDL with double-quoted identifiers. Dotted names
// such as "main.heart" are quoted per segment.
var Dialect = gddl.Dialect{
	Name:       "sqlite ddl",
	QuoteIdent: QuoteIdent,
	MapType:    MapType,
}

// QuoteIdent quotes one identifier segment for SQLite.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
