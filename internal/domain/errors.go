package domain

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the listing operations. Callers match them with
// errors.Is; the HTTP layer maps each one to a status code.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUpstream     = errors.New("upstream failure")
)

// Invalid wraps a validation message so that it matches ErrValidation.
func Invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Upstream tags a store or third-party error as ErrUpstream while keeping
// the cause in the chain.
func Upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
