package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
)

// ConstraintViolation names the field that failed validation; it matches
// ErrConstraintViolation under errors.Is.
type ConstraintViolation struct {
	Field  string
	Reason string
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation: %s: %s", e.Field, e.Reason)
}

func (e *ConstraintViolation) Is(target error) bool {
	return target == ErrConstraintViolation
}

func Constraint(field string, reason string) error {
	return &ConstraintViolation{Field: field, Reason: reason}
}
