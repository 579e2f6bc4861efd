package schema

import (
	"fmt"
	"math"

	"heartetl/internal/table"
)

// Validate checks t against s. For every schema column the table must have
// the column, non-nullable columns must hold no nulls, and every non-null
// cell must match the column type and lie in its domain. Table columns that
// the schema does not mention are ignored.
//
// All failing columns are reported together in a *ViolationError.
func Validate(t *table.Table, s Schema) error {
	var violations []Violation
	for _, c := range s.cols {
		cells, err := t.Column(c.Name)
		if err != nil {
			violations = append(violations, Violation{Column: c.Name, Rule: RuleMissingColumn})
			continue
		}
		violations = append(violations, checkColumn(t, c, cells)...)
	}
	if len(violations) > 0 {
		return &ViolationError{Violations: violations}
	}
	return nil
}

// checkColumn returns at most one Violation per rule for column c.
func checkColumn(t *table.Table, c Column, cells []any) []Violation {
	var nulls, types, domain *Violation
	note := func(slot **Violation, rule Rule, detail string, row int, v any) {
		if *slot == nil {
			*slot = &Violation{Column: c.Name, Rule: rule, Detail: detail, RowID: t.RowID(row), Value: v}
		}
		(*slot).Count++
	}

	for row, v := range cells {
		if v == nil {
			if !c.Nullable {
				note(&nulls, RuleNull, "", row, nil)
			}
			continue
		}
		f, ok := table.AsFloat(v)
		if !ok || !matchesType(c.Type, v, f) {
			note(&types, RuleType, fmt.Sprintf("type %s", c.Type), row, v)
			continue
		}
		if !c.Domain.Contains(f) {
			note(&domain, RuleDomain, fmt.Sprintf("domain %s", c.Domain), row, v)
		}
	}

	var out []Violation
	for _, v := range []*Violation{nulls, types, domain} {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// matchesType accepts int64 for both types; float64 is accepted for integer
// columns only when it has no fractional part.
func matchesType(typ Type, v any, f float64) bool {
	switch typ {
	case Integer:
		if _, isInt := v.(int64); isInt {
			return true
		}
		return !math.IsInf(f, 0) && f == math.Trunc(f)
	case Float:
		return !math.IsInf(f, 0)
	}
	return false
}
