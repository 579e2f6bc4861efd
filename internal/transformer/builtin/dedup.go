// Package builtin contains the table transforms used by the transform
// stage: missing-value imputation (Impute, KNN) and row de-duplication
// (DeDup).
package builtin

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"

	"heartetl/internal/table"
)

// DeDup removes rows that repeat an earlier row.
//
// Two rows are duplicates when every column holds an equal value: null
// equals null and numbers compare by value, so int64(1) equals 1.0. Row
// identifiers are not compared. The first occurrence survives and row order
// is preserved.
//
// Rows are bucketed by an xxh3 hash of a canonical encoding and compared
// exactly within a bucket, so a hash collision never drops a row.
type DeDup struct{}

// Apply returns the de-duplicated table and the number of rows removed.
func (DeDup) Apply(t *table.Table) (*table.Table, int) {
	n := t.Len()
	if n == 0 {
		return t.Clone(), 0
	}

	buckets := make(map[uint64][]int, n)
	keep := make([]int, 0, n)
	var buf []byte

	for i := 0; i < n; i++ {
		row := t.Row(i)
		buf = encodeRow(buf[:0], row)
		h := xxh3.Hash(buf)

		dup := false
		for _, k := range buckets[h] {
			if rowsEqual(row, t.Row(k)) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		buckets[h] = append(buckets[h], i)
		keep = append(keep, i)
	}
	return t.Select(keep), n - len(keep)
}

// Cell tags of the canonical encoding.
const (
	tagNull byte = iota
	tagNumber
	tagString
	tagBool
)

// encodeRow appends a canonical encoding of row to dst. Numerically equal
// cells encode identically regardless of int64/float64.
func encodeRow(dst []byte, row []any) []byte {
	for _, v := range row {
		switch x := v.(type) {
		case nil:
			dst = append(dst, tagNull)
		case string:
			dst = append(dst, tagString)
			dst = binary.AppendUvarint(dst, uint64(len(x)))
			dst = append(dst, x...)
		case bool:
			b := byte(0)
			if x {
				b = 1
			}
			dst = append(dst, tagBool, b)
		default:
			f, _ := table.AsFloat(v)
			if f == 0 {
				f = 0 // fold -0
			}
			dst = append(dst, tagNumber)
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(f))
		}
	}
	return dst
}

func rowsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !cellsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func cellsEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ai, ok := a.(int64); ok {
		if bi, ok := b.(int64); ok {
			return ai == bi
		}
	}
	af, aNum := table.AsFloat(a)
	bf, bNum := table.AsFloat(b)
	if aNum || bNum {
		return aNum && bNum && af == bf
	}
	return a == b
}
