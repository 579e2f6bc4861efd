// Package probe profiles a dataset before it is wired into a pipeline run:
// per-column storage kind, null counts, numeric range, schema violations
// and a suggested imputation strategy for every column with nulls.
//
// The suggestions follow the shape of the heart disease data: bounded
// measurements get the median, coded categories the most frequent value and
// float-coded categories (ca, thal) the nearest neighbours.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"heartetl/internal/config"
	"heartetl/internal/datasource"
	"heartetl/internal/ddl"
	pcsv "heartetl/internal/parser/csv"
	"heartetl/internal/schema"
	"heartetl/internal/table"
)

// Options control the sampling and parsing behavior.
type Options struct {
	// Bytes limits how much of the source is read. The sample is cut at the
	// last newline so no partial row is parsed. 0 reads everything.
	Bytes int

	// Delimiter is the field separator; ',' when zero.
	Delimiter rune

	// HeaderMap renames source headers, as in data.header_map.
	HeaderMap map[string]string
}

// ColumnProfile describes one column of the sample.
type ColumnProfile struct {
	Name string
	Kind ddl.Kind

	Nulls    int
	Distinct int

	// Min and Max are NaN for columns without numeric values.
	Min, Max float64

	// InSchema is false for columns the schema does not declare.
	InSchema bool

	// Violations counts cells breaking a type or domain rule.
	Violations int

	// Strategy is the suggested imputation strategy; empty without nulls.
	Strategy string
}

// Report is the result of profiling one table.
type Report struct {
	Rows    int
	Skipped int
	Columns []ColumnProfile

	// Missing lists schema columns absent from the table.
	Missing []string
}

// Run opens src, samples it per opt and profiles the result against sch.
func Run(ctx context.Context, src datasource.Source, sch schema.Schema, opt Options) (Report, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("probe: open: %w", err)
	}
	defer rc.Close()

	sample, err := Sample(rc, opt.Bytes)
	if err != nil {
		return Report{}, fmt.Errorf("probe: read sample: %w", err)
	}

	p := pcsv.NewParser(pcsv.Options{
		Comma:     opt.Delimiter,
		TrimSpace: true,
		HeaderMap: opt.HeaderMap,
	})
	t, skipped, err := p.Parse(bytes.NewReader(sample))
	if err != nil {
		return Report{}, fmt.Errorf("probe: parse sample: %w", err)
	}
	rep, err := Profile(t, sch)
	if err != nil {
		return Report{}, err
	}
	rep.Skipped = skipped
	return rep, nil
}

// Sample reads up to n bytes from r and trims them back to the last newline.
// n <= 0 reads r to the end.
func Sample(r io.Reader, n int) ([]byte, error) {
	if n <= 0 {
		return io.ReadAll(r)
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(r, buf)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		// short source: everything was read
		return buf[:got], nil
	case err != nil:
		return nil, err
	}
	if i := bytes.LastIndexByte(buf, '\n'); i >= 0 {
		return buf[:i+1], nil
	}
	return buf, nil
}

// Profile computes the per-column report of t. Columns keep table order;
// schema columns missing from t are listed in Report.Missing, in schema
// order.
func Profile(t *table.Table, sch schema.Schema) (Report, error) {
	rep := Report{Rows: t.Len()}

	violations := map[string]int{}
	if err := schema.Validate(t, sch); err != nil {
		var ve *schema.ViolationError
		if !errors.As(err, &ve) {
			return Report{}, fmt.Errorf("probe: %w", err)
		}
		for _, v := range ve.Violations {
			switch v.Rule {
			case schema.RuleMissingColumn:
				rep.Missing = append(rep.Missing, v.Column)
			case schema.RuleType, schema.RuleDomain:
				violations[v.Column] += v.Count
			}
		}
	}

	for _, name := range t.Columns() {
		cells, _ := t.Column(name)
		kind, err := ddl.InferKind(cells)
		if err != nil {
			return Report{}, fmt.Errorf("probe: column %s: %w", name, err)
		}
		cp := ColumnProfile{
			Name:       name,
			Kind:       kind,
			Min:        math.NaN(),
			Max:        math.NaN(),
			Violations: violations[name],
		}
		seen := map[any]struct{}{}
		for _, v := range cells {
			if v == nil {
				cp.Nulls++
				continue
			}
			if f, ok := table.AsFloat(v); ok {
				seen[f] = struct{}{}
				if math.IsNaN(cp.Min) || f < cp.Min {
					cp.Min = f
				}
				if math.IsNaN(cp.Max) || f > cp.Max {
					cp.Max = f
				}
				continue
			}
			seen[v] = struct{}{}
		}
		cp.Distinct = len(seen)

		col, ok := sch.Lookup(name)
		cp.InSchema = ok
		if cp.Nulls > 0 {
			cp.Strategy = suggest(cp, col, ok)
		}
		rep.Columns = append(rep.Columns, cp)
	}
	return rep, nil
}

func suggest(cp ColumnProfile, col schema.Column, inSchema bool) string {
	if cp.Distinct == 0 {
		// all null: nothing to learn a statistic from
		return ""
	}
	if !inSchema {
		if cp.Kind == ddl.KindText || cp.Kind == ddl.KindBool {
			return config.StrategyMostFrequent
		}
		return config.StrategyMedian
	}
	if _, isSet := col.Domain.(schema.Set); isSet {
		if col.Type == schema.Float {
			return config.StrategyKNN
		}
		return config.StrategyMostFrequent
	}
	return config.StrategyMedian
}

// strategyOrder is the order suggested groups are emitted in.
var strategyOrder = []string{
	config.StrategyMedian,
	config.StrategyMostFrequent,
	config.StrategyKNN,
}

// Strategies returns the suggested handle_missing.strategies mapping.
// Columns keep table order within a group; empty groups are left out.
func (r Report) Strategies() config.Strategies {
	var out config.Strategies
	for _, s := range strategyOrder {
		var cols []string
		for _, c := range r.Columns {
			if c.Strategy == s {
				cols = append(cols, c.Name)
			}
		}
		if len(cols) > 0 {
			out = append(out, config.StrategyGroup{Strategy: s, Columns: cols})
		}
	}
	return out
}
