// Package ddl contains SQLite-specific helpers for generating DDL.
package ddl

import gddl "heartetl/internal/ddl"

// MapType maps a logical column kind onto a SQLite type affinity. Booleans
// are stored as INTEGER 0/1.
func MapType(kind gddl.Kind) string {
	switch kind {
	case gddl.KindInteger, gddl.KindBool:
		return "INTEGER"
	case gddl.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}
