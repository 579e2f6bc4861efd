package builtin

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"heartetl/internal/config"
	"heartetl/internal/stats"
	"heartetl/internal/table"
)

// DefaultNeighbors is k when KNN.Neighbors is not set.
const DefaultNeighbors = 5

// knnBlock is the number of receiver rows handed to one goroutine.
const knnBlock = 64

// KNN fills missing cells of Columns from the k nearest rows.
//
// Distances use only the KNN columns: a NaN-aware Euclidean distance over
// the coordinates present in both rows, scaled up by
// len(Columns)/present. A donor for a cell must have a value in that
// column; candidates are ranked by distance, then by row position.
// All distances come from the values before any fill, so the result is the
// same for any processing order and worker count.
//
// Filled columns are emitted as float64. No indicator columns are added.
type KNN struct {
	Columns []string

	// Neighbors is k; DefaultNeighbors when 0. Negative values are rejected.
	Neighbors int

	// Weights is "uniform" (default) or "distance".
	Weights string

	// Workers bounds concurrency; GOMAXPROCS when < 1.
	Workers int
}

// Apply returns a new table with the KNN columns filled.
func (k KNN) Apply(ctx context.Context, t *table.Table) (*table.Table, FillReport, error) {
	if len(k.Columns) == 0 {
		return t.Clone(), nil, nil
	}
	neighbors := k.Neighbors
	switch {
	case neighbors < 0:
		return nil, nil, fmt.Errorf("impute: knn neighbors=%d: %w", neighbors, ErrInvalidNeighbors)
	case neighbors == 0:
		neighbors = DefaultNeighbors
	}
	workers := k.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	byDistance := k.Weights == "distance"

	n, m := t.Len(), len(k.Columns)

	// x[row][col] with NaN for null.
	x := make([][]float64, n)
	for i := range x {
		x[i] = make([]float64, m)
	}
	means := make([]float64, m)
	for j, c := range k.Columns {
		cells, err := t.Column(c)
		if err != nil {
			return nil, nil, &ColumnNotFoundError{Column: c, Strategy: config.StrategyKNN}
		}
		var observed []float64
		for i, v := range cells {
			if v == nil {
				x[i][j] = math.NaN()
				continue
			}
			f, ok := table.AsFloat(v)
			if !ok {
				return nil, nil, &ImputationError{Column: c, Strategy: config.StrategyKNN,
					Reason: fmt.Sprintf("non-numeric value %v (%T) at row %d", v, v, t.RowID(i))}
			}
			x[i][j] = f
			observed = append(observed, f)
		}
		if len(observed) == 0 {
			return nil, nil, &ImputationError{Column: c, Strategy: config.StrategyKNN, Reason: "column has no observed values"}
		}
		means[j] = stats.Mean(observed)
	}

	var receivers []int
	for i := range x {
		for j := range x[i] {
			if math.IsNaN(x[i][j]) {
				receivers = append(receivers, i)
				break
			}
		}
	}

	// filled[r] holds the completed row for receivers[r]; each goroutine
	// owns a disjoint range of it.
	filled := make([][]float64, len(receivers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(receivers); lo += knnBlock {
		lo, hi := lo, min(lo+knnBlock, len(receivers))
		g.Go(func() error {
			for r := lo; r < hi; r++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				filled[r] = fillRow(x, receivers[r], neighbors, byDistance, means)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("impute: knn: %w", err)
	}

	counts := make([]int, m)
	out := make([][]any, m)
	for j := range out {
		out[j] = make([]any, n)
		for i := range x {
			out[j][i] = x[i][j]
		}
	}
	for r, row := range filled {
		i := receivers[r]
		for j := range row {
			if math.IsNaN(x[i][j]) {
				out[j][i] = row[j]
				counts[j]++
			}
		}
	}

	b := table.NewBuilder(t)
	report := make(FillReport, 0, m)
	for j, c := range k.Columns {
		b.Replace(c, out[j])
		report = append(report, Fill{Column: c, Strategy: config.StrategyKNN, Cells: counts[j]})
	}
	res, err := b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("impute: knn: %w", err)
	}
	return res, report, nil
}

type candidate struct {
	row  int
	dist float64
}

// fillRow returns a copy of row i with every NaN replaced by its neighbour
// estimate.
func fillRow(x [][]float64, i, k int, byDistance bool, means []float64) []float64 {
	row := append([]float64(nil), x[i]...)

	// Distances from i to every other row, shared by all target columns.
	dists := make([]float64, len(x))
	for d := range x {
		if d == i {
			dists[d] = math.NaN()
			continue
		}
		dists[d] = nanEuclidean(x[i], x[d])
	}

	cands := make([]candidate, 0, len(x))
	for j := range row {
		if !math.IsNaN(row[j]) {
			continue
		}
		cands = cands[:0]
		for d := range x {
			if math.IsNaN(dists[d]) || math.IsNaN(x[d][j]) {
				continue
			}
			cands = append(cands, candidate{row: d, dist: dists[d]})
		}
		if len(cands) == 0 {
			row[j] = means[j]
			continue
		}
		sort.Slice(cands, func(a, b int) bool {
			if cands[a].dist != cands[b].dist {
				return cands[a].dist < cands[b].dist
			}
			return cands[a].row < cands[b].row
		})
		if len(cands) > k {
			cands = cands[:k]
		}
		row[j] = estimate(x, j, cands, byDistance)
	}
	return row
}

// estimate averages column j over the chosen donors.
func estimate(x [][]float64, j int, donors []candidate, byDistance bool) float64 {
	if byDistance {
		// Exact matches dominate: if any donor is at distance zero, only
		// those count.
		var zero []float64
		for _, c := range donors {
			if c.dist == 0 {
				zero = append(zero, x[c.row][j])
			}
		}
		if len(zero) > 0 {
			return stats.Mean(zero)
		}
		var num, den float64
		for _, c := range donors {
			w := 1 / c.dist
			num += w * x[c.row][j]
			den += w
		}
		return num / den
	}
	vals := make([]float64, len(donors))
	for i, c := range donors {
		vals[i] = x[c.row][j]
	}
	return stats.Mean(vals)
}

// nanEuclidean is the Euclidean distance over coordinates present in both
// a and b, scaled by len(a)/present. It is NaN when no coordinate is shared.
func nanEuclidean(a, b []float64) float64 {
	var sum float64
	present := 0
	for j := range a {
		if math.IsNaN(a[j]) || math.IsNaN(b[j]) {
			continue
		}
		d := a[j] - b[j]
		sum += d * d
		present++
	}
	if present == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum * float64(len(a)) / float64(present))
}
