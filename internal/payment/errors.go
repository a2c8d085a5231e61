package payment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsertionNotAllowed is matched by every AdmissionError.
	ErrInsertionNotAllowed     = errors.New("insertion not allowed")
	// ErrTransactionNotFound is returned when a lookup or reversal target does not exist.
	ErrTransactionNotFound     = errors.New("transaction not found")
	// ErrIncompleteAuthorization is returned when the authorizer answers without a code or NSU.
	ErrIncompleteAuthorization = errors.New("authorize payment: empty authorization code or NSU")
)

// AdmissionError lists the fields that mark an inbound transaction as already processed.
type AdmissionError struct {
	Fields []string
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("%s: fields already set: %s", ErrInsertionNotAllowed, strings.Join(e.Fields, ", "))
}

func (e *AdmissionError) Is(target error) bool {
	return target == ErrInsertionNotAllowed
}
