// Package csv reads delimited text into a table.Table and writes tables
// back out. Headers are normalized to lowercase identifiers, configured
// null tokens become nulls and numeric cells are typed as int64 or float64.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"heartetl/internal/table"
)

// DefaultNullTokens are the cell values read as null when Options.NullTokens
// is empty. "?" is how the UCI files mark missing values.
var DefaultNullTokens = []string{"", "?", "NA", "NaN"}

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical column names. Unmapped
	// headers are normalized (see NormalizeHeader).
	HeaderMap map[string]string

	// NullTokens lists cell values read as null; DefaultNullTokens when nil.
	NullTokens []string

	// IDColumn, when set and present in the header, supplies the row
	// identifiers and is not kept as a data column. Otherwise rows are
	// numbered from 0.
	IDColumn string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct {
	opt   Options
	nulls map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	tokens := opt.NullTokens
	if tokens == nil {
		tokens = DefaultNullTokens
	}
	nulls := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		nulls[t] = struct{}{}
	}
	return &Parser{opt: opt, nulls: nulls}
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps per-row skip log lines.
const skipLogLimit = 100

// Parse reads the header and every row of r into a table. Rows whose width
// differs from the header, or that encoding/csv cannot read, are skipped,
// logged and counted in the second return value. A missing header, a
// duplicate column after normalization or a bad id cell is an error.
func (p *Parser) Parse(r io.Reader) (*table.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h, p.opt)

	idIdx := -1
	cols := make([]string, 0, len(headers))
	for i, name := range headers {
		if p.opt.IDColumn != "" && name == p.opt.IDColumn && idIdx < 0 {
			idIdx = i
			continue
		}
		cols = append(cols, name)
	}
	t, err := table.New(cols...)
	if err != nil {
		return nil, 0, fmt.Errorf("csv header: %w", err)
	}

	var (
		skipped int
		nextID  int64
		vals    = make([]any, len(cols))
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				log.Printf("csv: skipping line %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(row) != len(headers) {
			if skipped < skipLogLimit {
				log.Printf("csv: skipping line %d: incorrect number of fields (expected %d, got %d)", line, len(headers), len(row))
			}
			skipped++
			continue
		}

		id := nextID
		c := 0
		for i, raw := range row {
			if p.opt.TrimSpace {
				raw = strings.TrimSpace(raw)
			}
			if i == idIdx {
				id, err = strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
				if err != nil {
					return nil, skipped, fmt.Errorf("csv line %d: %s %q is not an integer", line, p.opt.IDColumn, raw)
				}
				continue
			}
			vals[c] = p.cell(raw)
			c++
		}
		if err := t.AppendRow(id, vals...); err != nil {
			return nil, skipped, fmt.Errorf("csv line %d: %w", line, err)
		}
		nextID++
	}
	return t, skipped, nil
}

// cell converts one raw field: null token -> nil, integer -> int64,
// number -> float64, anything else stays a string.
func (p *Parser) cell(raw string) any {
	if _, ok := p.nulls[raw]; ok {
		return nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(f) {
			return nil
		}
		return f
	}
	return raw
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and NormalizeHeader. It also strips a UTF-8 BOM from the first
// cell if present.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		res[i] = NormalizeHeader(c)
	}
	return res
}
