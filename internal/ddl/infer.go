package ddl

import (
	"fmt"
	"strings"

	"heartetl/internal/table"
)

// FromTable infers a table definition from the values held in t. The row
// identifiers become the first column, named idColumn, which is the primary
// key. Every data column is nullable.
//
// A column's kind is the widest kind among its non-null values:
// integer < float < text. A column of booleans is bool; a column with no
// values at all is float, since it can only have come from a numeric field.
func FromTable(fqn string, t *table.Table, idColumn string) (TableDef, error) {
	fqn = strings.TrimSpace(fqn)
	if fqn == "" {
		return TableDef{}, fmt.Errorf("ddl: table FQN must not be empty")
	}
	if idColumn == "" {
		return TableDef{}, fmt.Errorf("ddl: id column name must not be empty")
	}
	if t.Has(idColumn) {
		return TableDef{}, fmt.Errorf("ddl: data column %q collides with the id column", idColumn)
	}

	defs := make([]ColumnDef, 0, t.Width()+1)
	defs = append(defs, ColumnDef{Name: idColumn, Kind: KindInteger, PrimaryKey: true})
	for _, name := range t.Columns() {
		vals, _ := t.Column(name)
		k, err := InferKind(vals)
		if err != nil {
			return TableDef{}, fmt.Errorf("ddl: column %s: %w", name, err)
		}
		defs = append(defs, ColumnDef{Name: name, Kind: k, Nullable: true})
	}
	return TableDef{FQN: fqn, Columns: defs}, nil
}

// InferKind returns the storage kind of a column holding vals, using the
// rules described on FromTable.
func InferKind(vals []any) (Kind, error) {
	var ints, floats, bools, texts int
	for _, v := range vals {
		switch v.(type) {
		case nil:
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		case string:
			texts++
		default:
			return "", fmt.Errorf("unsupported value type %T", v)
		}
	}
	switch {
	case bools > 0 && ints+floats+texts > 0:
		return "", fmt.Errorf("mixes booleans with other values")
	case bools > 0:
		return KindBool, nil
	case texts > 0:
		return KindText, nil
	case ints > 0 && floats == 0:
		return KindInteger, nil
	default:
		return KindFloat, nil
	}
}
