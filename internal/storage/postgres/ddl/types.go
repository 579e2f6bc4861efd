// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import gddl "heartetl/internal/ddl"

// MapType maps a logical column kind into a Postgres SQL type.
//
//	integer -> BIGINT
//	float   -> DOUBLE PRECISION
//	bool    -> BOOLEAN
//	text    -> TEXT
func MapType(kind gddl.Kind) string {
	switch kind {
	case gddl.KindInteger:
		return "BIGINT"
	case gddl.KindFloat:
		return "DOUBLE PRECISION"
	case gddl.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}
