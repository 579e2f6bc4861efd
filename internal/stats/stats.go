// Package stats provides the column statistics used by imputation.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean computes the average of a slice. It returns NaN for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// Median returns the median value of the slice (allocates a copy). Even
// lengths average the two middle values, where stat.Quantile(0.5,
// stat.Empirical, ...) would return the lower one. Empty input yields NaN.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	mid := n >> 1
	if n&1 == 0 {
		return (cp[mid-1] + cp[mid]) * 0.5
	}
	return cp[mid]
}

// Mode returns the most frequent value. Ties break toward the smallest
// value so the result does not depend on map order. Empty input yields NaN.
func Mode(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	counts := make(map[float64]int, len(x))
	for _, v := range x {
		counts[v]++
	}
	best, bestN := 0.0, 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best
}

// ModeString is Mode for string values; ties break toward the
// lexicographically smallest value. ok is false for empty input.
func ModeString(x []string) (string, bool) {
	if len(x) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(x))
	for _, v := range x {
		counts[v]++
	}
	best, bestN := "", 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, true
}
