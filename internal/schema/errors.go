package schema

import (
	"fmt"
	"strings"
)

// Rule names the constraint a Violation broke.
type Rule string

const (
	RuleMissingColumn Rule = "missing_column"
	RuleNull          Rule = "null"
	RuleType          Rule = "type"
	RuleDomain        Rule = "domain"
)

// Violation describes the failures of one column. RowID and Value refer to
// the first offending row; Count is the number of offending rows.
type Violation struct {
	Column string
	Rule   Rule
	Detail string
	RowID  int64
	Value  any
	Count  int
}

func (v Violation) String() string {
	switch v.Rule {
	case RuleMissingColumn:
		return fmt.Sprintf("column %q: missing from table", v.Column)
	case RuleNull:
		return fmt.Sprintf("column %q: %d null value(s) in non-nullable column (first at id=%d)", v.Column, v.Count, v.RowID)
	default:
		return fmt.Sprintf("column %q: %s: %d row(s) failed %s (first id=%d value=%v)",
			v.Column, v.Rule, v.Count, v.Detail, v.RowID, v.Value)
	}
}

// ViolationError is returned by Validate when the table does not conform.
// It lists one Violation per failing column and rule.
type ViolationError struct {
	Violations []Violation
}

func (e *ViolationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("schema violation: %s", strings.Join(parts, "; "))
}

// Columns returns the names of the failing columns, in schema order.
func (e *ViolationError) Columns() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range e.Violations {
		if _, ok := seen[v.Column]; ok {
			continue
		}
		seen[v.Column] = struct{}{}
		out = append(out, v.Column)
	}
	return out
}
