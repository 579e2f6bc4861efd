// Package table holds the in-memory, column-oriented data model passed
// between the extract, transform and load stages.
//
// A Table is an ordered set of named columns. Every column has one cell per
// row; a cell is either nil (null) or a scalar: int64, float64, string or
// bool (bool is used by indicator columns). Each row carries an int64
// identifier that survives every transformation, so the loaded table can be
// joined back to the raw snapshot.
package table

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn is returned (wrapped) when a column name is not part
	// of the table.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateColumn is returned (wrapped) when a column name would
	// appear twice.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Table is a column-major table with per-row identifiers. The zero value is
// not usable; construct with New.
type Table struct {
	names []string
	index map[string]int
	cols  [][]any
	ids   []int64
}

// New returns an empty table with the given column names.
func New(columns ...string) (*Table, error) {
	t := &Table{
		names: make([]string, 0, len(columns)),
		index: make(map[string]int, len(columns)),
		cols:  make([][]any, 0, len(columns)),
	}
	for _, c := range columns {
		if err := t.addColumn(c, nil); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) addColumn(name string, values []any) error {
	if name == "" {
		return fmt.Errorf("table: column name must not be empty")
	}
	if _, ok := t.index[name]; ok {
		return fmt.Errorf("table: %w %q", ErrDuplicateColumn, name)
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.cols = append(t.cols, values)
	return nil
}

// AppendRow appends one row. values must be aligned with Columns().
// Go ints and float32 are widened to int64/float64.
func (t *Table) AppendRow(id int64, values ...any) error {
	if len(values) != len(t.names) {
		return fmt.Errorf("table: row %d has %d values, want %d", id, len(values), len(t.names))
	}
	for i, v := range values {
		nv, err := Normalize(v)
		if err != nil {
			return fmt.Errorf("table: row %d column %q: %w", id, t.names[i], err)
		}
		t.cols[i] = append(t.cols[i], nv)
	}
	t.ids = append(t.ids, id)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.ids) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.names) }

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the cells of column name. The returned slice is shared with
// the table and must not be modified; use a Builder to change columns.
func (t *Table) Column(name string) ([]any, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("table: %w %q", ErrUnknownColumn, name)
	}
	return t.cols[i], nil
}

// Value returns the cell at (row, column). It panics if row is out of range.
func (t *Table) Value(row int, name string) (any, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return col[row], nil
}

// Row returns a copy of row i aligned with Columns().
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	for c := range t.cols {
		out[c] = t.cols[c][i]
	}
	return out
}

// RowID returns the identifier of row i.
func (t *Table) RowID(i int) int64 { return t.ids[i] }

// RowIDs returns a copy of all row identifiers in row order.
func (t *Table) RowIDs() []int64 {
	out := make([]int64, len(t.ids))
	copy(out, t.ids)
	return out
}

// NullCount returns the number of null cells in column name.
func (t *Table) NullCount(name string) (int, error) {
	col, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range col {
		if v == nil {
			n++
		}
	}
	return n, nil
}

// Clone returns a deep copy. Cells are immutable scalars, so copying the
// column slices is enough.
func (t *Table) Clone() *Table {
	c := &Table{
		names: make([]string, len(t.names)),
		index: make(map[string]int, len(t.index)),
		cols:  make([][]any, len(t.cols)),
		ids:   make([]int64, len(t.ids)),
	}
	copy(c.names, t.names)
	for k, v := range t.index {
		c.index[k] = v
	}
	for i, col := range t.cols {
		c.cols[i] = append([]any(nil), col...)
	}
	copy(c.ids, t.ids)
	return c
}

// Select returns a new table holding only the given rows, in the order
// given. Row identifiers travel with their rows.
func (t *Table) Select(rows []int) *Table {
	c := &Table{
		names: make([]string, len(t.names)),
		index: make(map[string]int, len(t.index)),
		cols:  make([][]any, len(t.cols)),
		ids:   make([]int64, 0, len(rows)),
	}
	copy(c.names, t.names)
	for k, v := range t.index {
		c.index[k] = v
	}
	for i := range t.cols {
		c.cols[i] = make([]any, 0, len(rows))
	}
	for _, r := range rows {
		for i := range t.cols {
			c.cols[i] = append(c.cols[i], t.cols[i][r])
		}
		c.ids = append(c.ids, t.ids[r])
	}
	return c
}

// Project returns a new table holding only the named columns, in the order
// given. Row identifiers are kept.
func (t *Table) Project(names ...string) (*Table, error) {
	c, err := New(names...)
	if err != nil {
		return nil, err
	}
	for i, n := range names {
		j, ok := t.index[n]
		if !ok {
			return nil, fmt.Errorf("table: %w %q", ErrUnknownColumn, n)
		}
		c.cols[i] = append([]any(nil), t.cols[j]...)
	}
	c.ids = append([]int64(nil), t.ids...)
	return c, nil
}
