// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import gddl "heartetl/internal/ddl"

// MapType maps a logical column kind into a MySQL column type. Booleans use
// BOOLEAN, which MySQL stores as TINYINT(1).
func MapType(kind gddl.Kind) string {
	switch kind {
	case gddl.KindInteger:
		return "BIGINT"
	case gddl.KindFloat:
		return "DOUBLE"
	case gddl.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}
