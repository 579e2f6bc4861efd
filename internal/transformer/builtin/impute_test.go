package builtin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartetl/internal/config"
	"heartetl/internal/table"
)

// mkTable builds a table from named columns of equal length; row ids are
// 0..n-1.
func mkTable(t *testing.T, names []string, cols ...[]any) *table.Table {
	t.Helper()
	tb, err := table.New(names...)
	require.NoError(t, err)
	if len(cols) == 0 {
		return tb
	}
	for i := range cols[0] {
		row := make([]any, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		require.NoError(t, tb.AppendRow(int64(i), row...))
	}
	return tb
}

func column(t *testing.T, tb *table.Table, name string) []any {
	t.Helper()
	c, err := tb.Column(name)
	require.NoError(t, err)
	return c
}

func groups(g ...config.StrategyGroup) config.Strategies { return config.Strategies(g) }

func TestImpute_MeanFillsAndIndicates(t *testing.T) {
	t.Parallel()

	in := mkTable(t, []string{"chol", "age"},
		[]any{200, nil, 600},
		[]any{40, 50, 60},
	)
	out, report, err := Impute{Strategies: groups(config.StrategyGroup{Strategy: config.StrategyMean, Columns: []string{"chol"}})}.
		Apply(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []any{200.0, 400.0, 600.0}, column(t, out, "chol"))
	assert.Equal(t, []any{false, true, false}, column(t, out, IndicatorName("chol")))
	assert.Equal(t, []any{int64(40), int64(50), int64(60)}, column(t, out, "age"), "untouched column")
	assert.Equal(t, []string{"chol", "age", "missingindicator_chol"}, out.Columns())

	require.Len(t, report, 1)
	assert.Equal(t, Fill{Column: "chol", Strategy: config.StrategyMean, Cells: 1, Value: 400.0}, report[0])

	n, _ := in.NullCount("chol")
	assert.Equal(t, 1, n, "input must not be modified")
	assert.False(t, in.Has(IndicatorName("chol")))
}

func TestImpute_Statistics(t *testing.T) {
	t.Parallel()

	cells := []any{1, 2, 2, 9, nil, 3}
	tests := []struct {
		strategy string
		want     float64
	}{
		{config.StrategyMean, 3.4},
		{config.StrategyMedian, 2},
		{config.StrategyMostFrequent, 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.strategy, func(t *testing.T) {
			t.Parallel()
			in := mkTable(t, []string{"x"}, cells)
			out, _, err := Impute{Strategies: groups(config.StrategyGroup{Strategy: tt.strategy, Columns: []string{"x"}})}.
				Apply(context.Background(), in)
			require.NoError(t, err)
			got, _ := table.AsFloat(column(t, out, "x")[4])
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestImpute_MedianEvenCountAndModeTie(t *testing.T) {
	t.Parallel()

	in := mkTable(t, []string{"m", "f"},
		[]any{1, 4, nil, 10, 2},
		[]any{3, 1, nil, 3, 1},
	)
	out, _, err := Impute{Strategies: groups(
		config.StrategyGroup{Strategy: config.StrategyMedian, Columns: []string{"m"}},
		config.StrategyGroup{Strategy: config.StrategyMostFrequent, Columns: []string{"f"}},
	)}.Apply(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 3.0, column(t, out, "m")[2])
	assert.Equal(t, 1.0, column(t, out, "f")[2], "tie breaks to smallest value")
}

func TestImpute_MostFrequentKeepsStrings(t *testing.T) {
	t.Parallel()

	in := mkTable(t, []string{"s"}, []any{"b", "a", nil, "b"})
	out, _, err := Impute{Strategies: groups(config.StrategyGroup{Strategy: config.StrategyMostFrequent, Columns: []string{"s"}})}.
		Apply(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []any{"b", "a", "b", "b"}, column(t, out, "s"))
}

func TestImpute_StringsRejectedForMean(t *testing.T) {
	t.Parallel()

	in := mkTable(t, []string{"s"}, []any{"b", nil})
	_, _, err := Impute{Strategies: groups(config.StrategyGroup{Strategy: config.StrategyMean, Columns: []string{"s"}})}.
		Apply(context.Background(), in)
	var ie *ImputationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "s", ie.Column)
}

func TestImpute_MissingColumnFailsBeforeAnyWork(t *testing.T) {
	t.Parallel()

	in := mkTable(t, []string{"chol"}, []any{200, nil})
	before := in.Clone()
	_, _, err := Impute{Strategies: groups(
		config.StrategyGroup{Strategy: config.StrategyMean, Columns: []string{"chol"}},
		config.StrategyGroup{Strategy: config.StrategyKNN, Columns: []string{"ca"}},
	)}.Apply(context.Background(), in)

	var cnf *ColumnNotFoundError
	require.ErrorAs(t, err, &cnf)
	assert.Equal(t, &ColumnNotFoundError{Column: "ca", Strategy: config.StrategyKNN}, cnf)
	assert.Equal(t, before, in)
}

func TestImpute_EmptyColumnIsAnError(t *testing.T) {
	t.Parallel()

	for _, s := range []string{config.StrategyMean, config.StrategyMedian, config.StrategyMostFrequent, config.StrategyKNN} {
		s := s
		t.Run(s, func(t *testing.T) {
			t.Parallel()
			in := mkTable(t, []string{"x"}, []any{nil, nil})
			_, _, err := Impute{Strategies: groups(config.StrategyGroup{Strategy: s, Columns: []string{"x"}})}.
				Apply(context.Background(), in)
			var ie *ImputationError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, s, ie.Strategy)
			assert.Contains(t, ie.Reason, "no observed values")
		})
	}
}

func TestImpute_UnknownStrategy(t *testing.T) {
	t.Parallel()

	in := mkTable(t, []string{"x"}, []any{1})
	_, _, err := Impute{Strategies: groups(config.StrategyGroup{Strategy: "mode", Columns: []string{"x"}})}.
		Apply(context.Background(), in)
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

// Disjoint groups give the same values whatever their order; only the
// position of the indicator columns follows the group order.
func TestImpute_GroupOrderDoesNotChangeValues(t *testing.T) {
	t.Parallel()

	in := mkTable(t, []string{"a", "b", "c"},
		[]any{1, nil, 5, 7},
		[]any{nil, 2, 2, 8},
		[]any{0, 1, nil, 1},
	)
	a := config.StrategyGroup{Strategy: config.StrategyMean, Columns: []string{"a"}}
	b := config.StrategyGroup{Strategy: config.StrategyMedian, Columns: []string{"b"}}
	c := config.StrategyGroup{Strategy: config.StrategyMostFrequent, Columns: []string{"c"}}

	first, _, err := Impute{Strategies: groups(a, b, c)}.Apply(context.Background(), in)
	require.NoError(t, err)
	second, _, err := Impute{Strategies: groups(c, a, b)}.Apply(context.Background(), in)
	require.NoError(t, err)

	for _, name := range first.Columns() {
		assert.Equal(t, column(t, first, name), column(t, second, name), name)
	}
}

func TestImpute_NoGroupsReturnsCopy(t *testing.T) {
	t.Parallel()

	in := mkTable(t, []string{"x"}, []any{1, nil})
	out, report, err := Impute{}.Apply(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, report)
	assert.Equal(t, in, out)
	assert.NotSame(t, in, out)
}

func TestFillReport_Total(t *testing.T) {
	t.Parallel()

	r := FillReport{{Cells: 2}, {Cells: 0}, {Cells: 5}}
	assert.Equal(t, 7, r.Total())
}
