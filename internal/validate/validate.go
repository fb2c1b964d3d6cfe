// Package validate marks request-parameter failures so callers can
// distinguish a bad request from a calculation fault.
package validate

import (
	"errors"

	"github.com/rotisserie/eris"
)

// Error wraps a parameter validation failure (unknown variable,
// out-of-range year, bad buffer size).
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a validation error with the formatted message.
func Errorf(format string, args ...any) error {
	return &Error{Err: eris.Errorf(format, args...)}
}

// IsValidation returns true if any error in the chain is a validation
// failure.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}
