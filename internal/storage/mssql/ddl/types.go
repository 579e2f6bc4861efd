// Package ddl contains MSSQL-specific helpers for generating DDL.
package ddl

import gddl "heartetl/internal/ddl"

// MapType maps a logical column kind into a SQL Server column type. Text
// falls back to NVARCHAR(MAX).
func MapType(kind gddl.Kind) string {
	switch kind {
	case gddl.KindInteger:
		return "BIGINT"
	case gddl.KindFloat:
		return "FLOAT"
	case gddl.KindBool:
		return "BIT"
	default:
		return "NVARCHAR(MAX)"
	}
}
