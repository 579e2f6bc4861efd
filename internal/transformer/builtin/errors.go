package builtin

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy is returned (wrapped) when an imputation group names a
// strategy the engine does not implement.
var ErrUnknownStrategy = errors.New("unknown imputation strategy")

// ErrInvalidNeighbors is returned (wrapped) for a negative KNN.Neighbors.
var ErrInvalidNeighbors = errors.New("neighbors must not be negative")

// ColumnNotFoundError reports a configured column that is absent from the
// table. It is raised before any column is modified.
type ColumnNotFoundError struct {
	Column   string
	Strategy string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("impute: column %q configured for %s not found in table", e.Column, e.Strategy)
}

// ImputationError reports a column whose fill value cannot be computed, for
// example because it has no observed values.
type ImputationError struct {
	Column   string
	Strategy string
	Reason   string
}

func (e *ImputationError) Error() string {
	return fmt.Sprintf("impute: %s on column %q: %s", e.Strategy, e.Column, e.Reason)
}
