// Package schema declares the expected shape of the dataset and validates
// tables against it.
//
// A Schema is an ordered list of Column entries. Each entry fixes a scalar
// type (integer or float), whether nulls are allowed, and exactly one
// admissible domain: an inclusive numeric Range or an enumerated Set.
// Schemas are plain values; callers construct one (for example with
// HeartDisease) and pass it to Validate.
package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the scalar type of a column.
type Type string

const (
	Integer Type = "integer"
	Float   Type = "float"
)

// Domain is the set of values a column may legally take. The two
// implementations are Range and Set.
type Domain interface {
	Contains(v float64) bool
	String() string
	isDomain()
}

// Range is an inclusive numeric interval. Use math.Inf for an open side.
type Range struct {
	Lo, Hi float64
}

// Contains reports whether lo <= v <= hi.
func (r Range) Contains(v float64) bool { return v >= r.Lo && v <= r.Hi }

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", fmtBound(r.Lo), fmtBound(r.Hi))
}

func (Range) isDomain() {}

// AtLeast returns the half-open range [lo, +inf).
func AtLeast(lo float64) Range { return Range{Lo: lo, Hi: math.Inf(1)} }

// Set is an enumerated domain of numeric values.
type Set struct {
	values []float64
	lookup map[float64]struct{}
}

// OneOf builds a Set from the admissible values.
func OneOf(values ...float64) Set {
	s := Set{
		values: append([]float64(nil), values...),
		lookup: make(map[float64]struct{}, len(values)),
	}
	for _, v := range values {
		s.lookup[v] = struct{}{}
	}
	return s
}

// Contains reports whether v is one of the admissible values.
func (s Set) Contains(v float64) bool {
	_, ok := s.lookup[v]
	return ok
}

// Values returns a copy of the admissible values.
func (s Set) Values() []float64 { return append([]float64(nil), s.values...) }

func (s Set) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = fmtBound(v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (Set) isDomain() {}

// Column is one schema entry.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
	Domain   Domain
}

// Schema is an ordered collection of columns keyed by name.
type Schema struct {
	cols  []Column
	index map[string]int
}

// New builds a Schema. Every column needs a name, a known type and a
// domain, and names must be unique.
func New(cols ...Column) (Schema, error) {
	s := Schema{
		cols:  make([]Column, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		if c.Name == "" {
			return Schema{}, fmt.Errorf("schema: column with empty name")
		}
		if _, dup := s.index[c.Name]; dup {
			return Schema{}, fmt.Errorf("schema: duplicate column %q", c.Name)
		}
		if c.Type != Integer && c.Type != Float {
			return Schema{}, fmt.Errorf("schema: column %q: unknown type %q", c.Name, c.Type)
		}
		if c.Domain == nil {
			return Schema{}, fmt.Errorf("schema: column %q: domain required", c.Name)
		}
		s.index[c.Name] = len(s.cols)
		s.cols = append(s.cols, c)
	}
	return s, nil
}

// Columns returns the entries in declaration order.
func (s Schema) Columns() []Column { return append([]Column(nil), s.cols...) }

// Lookup returns the entry for name.
func (s Schema) Lookup(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.cols[i], true
}

// Names returns the column names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, len(s.cols))
	for i, c := range s.cols {
		out[i] = c.Name
	}
	return out
}

func fmtBound(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
