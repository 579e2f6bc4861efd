package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"heartetl/internal/table"
)

// Write writes t as CSV with a header row. When idColumn is non-empty the
// row identifiers are written first under that name. Nulls are written as
// empty fields; integral floats keep a ".0" so they read back as float64.
func Write(w io.Writer, t *table.Table, idColumn string) error {
	cw := csv.NewWriter(w)

	cols := t.Columns()
	header := make([]string, 0, len(cols)+1)
	if idColumn != "" {
		header = append(header, idColumn)
	}
	header = append(header, cols...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	rec := make([]string, len(header))
	for i := 0; i < t.Len(); i++ {
		rec = rec[:0]
		if idColumn != "" {
			rec = append(rec, strconv.FormatInt(t.RowID(i), 10))
		}
		for _, v := range t.Row(i) {
			rec = append(rec, FormatCell(v))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", t.RowID(i), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatCell renders one cell the way Write does.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) && math.Abs(x) < 1e15 {
			return strconv.FormatFloat(x, 'f', 1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
