// Package apperr holds the error kinds shared across portal packages.
package apperr

import "errors"

var ErrNotFound = errors.New("not found")

// ValidationError is a user-facing rejection of a page operation
// (bad slug, duplicate slug, deleting the last page). Message is shown
// to the operator verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation returns a *ValidationError with msg.
func Validation(msg string) error {
	return &ValidationError{Message: msg}
}

// AsValidation reports whether err wraps a *ValidationError and returns it.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
