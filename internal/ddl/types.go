package ddl

// Kind is the logical type of a column, mapped to a concrete SQL type by
// each backend's MapType.
type Kind string

const (
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindBool    Kind = "bool"
	KindText    Kind = "text"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - Kind: logical type inferred from the data
//   - SQLType: target SQL type (e.g., BIGINT, DOUBLE PRECISION); filled by backends
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression
type ColumnDef struct {
	Name       string
	Kind       Kind
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table") and will
// be quoted by renderers as needed.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Names returns the column names in order.
func (t TableDef) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
