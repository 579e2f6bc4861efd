package builtin

import (
	"context"
	"fmt"
	"math"

	"heartetl/internal/config"
	"heartetl/internal/stats"
	"heartetl/internal/table"
)

// IndicatorPrefix is prepended to a column name to form the name of its
// missing indicator column.
const IndicatorPrefix = "missingindicator_"

// IndicatorName returns the indicator column name for col.
func IndicatorName(col string) string { return IndicatorPrefix + col }

// Fill records how many cells one strategy filled in one column.
type Fill struct {
	Column   string
	Strategy string
	Cells    int
	// Value is the statistic used by simple strategies; nil for knn.
	Value any
}

// FillReport lists fills in the order they were applied.
type FillReport []Fill

// Total returns the number of cells filled across all columns.
func (r FillReport) Total() int {
	n := 0
	for _, f := range r {
		n += f.Cells
	}
	return n
}

// Impute fills missing cells according to an ordered list of strategy
// groups.
//
// Simple strategies (mean, median, most_frequent) run first, in group order.
// Each filled column is emitted as float64 (most_frequent over strings keeps
// strings) and gets a bool indicator column appended at the end of the
// table. knn then runs once over its own group with the options in KNN.
//
// Every configured column is checked for existence before anything is
// computed; the input table is never modified.
type Impute struct {
	Strategies config.Strategies
	KNN        config.KNNOptions
}

// Apply returns a new table with missing cells filled, plus a report of what
// was filled.
func (im Impute) Apply(ctx context.Context, t *table.Table) (*table.Table, FillReport, error) {
	for _, g := range im.Strategies {
		if !config.KnownStrategy(g.Strategy) {
			return nil, nil, fmt.Errorf("impute: %w %q", ErrUnknownStrategy, g.Strategy)
		}
		for _, c := range g.Columns {
			if !t.Has(c) {
				return nil, nil, &ColumnNotFoundError{Column: c, Strategy: g.Strategy}
			}
		}
	}

	var (
		report FillReport
		work   = t
	)
	for _, g := range im.Strategies {
		if g.Strategy == config.StrategyKNN || len(g.Columns) == 0 {
			continue
		}
		b := table.NewBuilder(work)
		for _, c := range g.Columns {
			cells, err := work.Column(c)
			if err != nil {
				return nil, nil, err
			}
			filled, fill, err := simpleFill(g.Strategy, c, cells)
			if err != nil {
				return nil, nil, err
			}
			b.Replace(c, filled)
			b.Add(IndicatorName(c), indicator(cells))
			report = append(report, fill)
		}
		next, err := b.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("impute: %s: %w", g.Strategy, err)
		}
		work = next
	}

	if cols := im.Strategies.Columns(config.StrategyKNN); len(cols) > 0 {
		k := KNN{Columns: cols, Neighbors: im.KNN.Neighbors, Weights: im.KNN.Weights, Workers: im.KNN.Workers}
		next, fills, err := k.Apply(ctx, work)
		if err != nil {
			return nil, nil, err
		}
		work = next
		report = append(report, fills...)
	}

	if work == t {
		work = t.Clone()
	}
	return work, report, nil
}

// indicator marks the null cells of col.
func indicator(col []any) []any {
	out := make([]any, len(col))
	for i, v := range col {
		out[i] = v == nil
	}
	return out
}

// simpleFill computes the statistic for one column and returns the filled
// cells.
func simpleFill(strategy, column string, cells []any) ([]any, Fill, error) {
	fill := Fill{Column: column, Strategy: strategy}
	fail := func(reason string) ([]any, Fill, error) {
		return nil, fill, &ImputationError{Column: column, Strategy: strategy, Reason: reason}
	}

	var (
		nums  []float64
		strs  []string
		nulls int
	)
	for _, v := range cells {
		switch x := v.(type) {
		case nil:
			nulls++
		case string:
			strs = append(strs, x)
		default:
			f, ok := table.AsFloat(v)
			if !ok {
				return fail(fmt.Sprintf("unsupported value %v (%T)", v, v))
			}
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 && len(strs) == 0 {
		return fail("column has no observed values")
	}
	if len(nums) > 0 && len(strs) > 0 {
		return fail("column mixes numeric and string values")
	}

	out := make([]any, len(cells))
	if len(strs) > 0 {
		if strategy != config.StrategyMostFrequent {
			return fail("strategy requires numeric values")
		}
		mode, _ := stats.ModeString(strs)
		for i, v := range cells {
			if v == nil {
				out[i] = mode
			} else {
				out[i] = v
			}
		}
		fill.Cells, fill.Value = nulls, mode
		return out, fill, nil
	}

	var stat float64
	switch strategy {
	case config.StrategyMean:
		stat = stats.Mean(nums)
	case config.StrategyMedian:
		stat = stats.Median(nums)
	case config.StrategyMostFrequent:
		stat = stats.Mode(nums)
	default:
		return nil, fill, fmt.Errorf("impute: %w %q", ErrUnknownStrategy, strategy)
	}
	if math.IsNaN(stat) || math.IsInf(stat, 0) {
		return fail("statistic is not finite")
	}
	for i, v := range cells {
		if f, ok := table.AsFloat(v); ok {
			out[i] = f
		} else {
			out[i] = stat
		}
	}
	fill.Cells, fill.Value = nulls, stat
	return out, fill, nil
}
