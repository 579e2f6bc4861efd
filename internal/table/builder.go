package table

import (
	"errors"
	"fmt"
)

// Builder accumulates column replacements and new columns against a base
// table and applies them in a single Build step. The base table is never
// modified.
//
//	b := table.NewBuilder(t)
//	b.Replace("chol", filled)
//	b.Add("missingindicator_chol", flags)
//	out, err := b.Build()
//
// Replaced columns keep their position; added columns are appended in the
// order they were added.
type Builder struct {
	base    *Table
	replace map[string][]any
	added   []string
	addVals map[string][]any
	errs    []error
}

// NewBuilder starts a builder on top of base.
func NewBuilder(base *Table) *Builder {
	return &Builder{
		base:    base,
		replace: map[string][]any{},
		addVals: map[string][]any{},
	}
}

// Replace schedules the cells of an existing column to be swapped for values.
func (b *Builder) Replace(name string, values []any) *Builder {
	if !b.base.Has(name) {
		b.errs = append(b.errs, fmt.Errorf("table: replace: %w %q", ErrUnknownColumn, name))
		return b
	}
	if _, dup := b.replace[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("table: column %q replaced twice", name))
		return b
	}
	if err := b.checkLen(name, values); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.replace[name] = values
	return b
}

// Add schedules a new column to be appended after the existing ones.
func (b *Builder) Add(name string, values []any) *Builder {
	if b.base.Has(name) {
		b.errs = append(b.errs, fmt.Errorf("table: add: %w %q", ErrDuplicateColumn, name))
		return b
	}
	if _, dup := b.addVals[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("table: add: %w %q", ErrDuplicateColumn, name))
		return b
	}
	if err := b.checkLen(name, values); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.added = append(b.added, name)
	b.addVals[name] = values
	return b
}

func (b *Builder) checkLen(name string, values []any) error {
	if len(values) != b.base.Len() {
		return fmt.Errorf("table: column %q has %d cells, table has %d rows", name, len(values), b.base.Len())
	}
	for i, v := range values {
		if _, err := Normalize(v); err != nil {
			return fmt.Errorf("table: column %q row %d: %w", name, i, err)
		}
	}
	return nil
}

// Build applies all scheduled changes and returns the new table. If any
// Replace or Add call was invalid, Build returns all of those errors joined
// and no table.
func (b *Builder) Build() (*Table, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	out := b.base.Clone()
	for name, vals := range b.replace {
		out.cols[out.index[name]] = normalizeAll(vals)
	}
	for _, name := range b.added {
		if err := out.addColumn(name, normalizeAll(b.addVals[name])); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func normalizeAll(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i], _ = Normalize(v)
	}
	return out
}
