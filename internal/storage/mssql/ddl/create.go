package ddl

import (
	"strings"

	gddl "heartetl/internal/ddl"
)

// Dialect renders T-SQL with [bracketed] identifiers. DROP TABLE IF EXISTS
// needs SQL Server 2016 or later.
var Dialect = gddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: QuoteIdent,
	MapType:    MapType,
}

// QuoteIdent brackets a SQL Server identifier, escaping ].
func QuoteIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }
