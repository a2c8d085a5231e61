// Package storage holds what every TransactionStore implementation shares:
// the errors it reports and the data constraints it enforces.
package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no transaction has the requested identity.
var ErrNotFound = errors.New("record not found")

// ConstraintError reports a write rejected because the record violates a data constraint.
type ConstraintError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConstraintError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("constraint violation: %s", e.Reason)
	}
	return fmt.Sprintf("constraint violation on %s: %s", e.Field, e.Reason)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}
