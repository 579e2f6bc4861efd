package table

import (
	"fmt"
	"math"
)

// Normalize widens Go scalar types to the canonical cell types (int64,
// float64, string, bool). NaN is treated as null.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int64, string, bool:
		return t, nil
	case float64:
		if math.IsNaN(t) {
			return nil, nil
		}
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case float32:
		if math.IsNaN(float64(t)) {
			return nil, nil
		}
		return float64(t), nil
	default:
		return nil, fmt.Errorf("unsupported cell type %T", v)
	}
}

// AsFloat returns the numeric value of a cell. ok is false for nulls and
// non-numeric cells.
func AsFloat(v any) (f float64, ok bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}
