package ddl

import (
	"strings"

	gddl "heartetl/internal/ddl"
)

// Dialect renders Postgres DDL: double-quoted identifiers with embedded
// quotes doubled, and schema-qualified names quoted per segment.
var Dialect = gddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: quoteIdent,
	MapType:    MapType,
}

// quoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	quoteIdent(`chol`)       => `"chol"`
//	quoteIdent(`weird"name`) => `"weird""name"`
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
