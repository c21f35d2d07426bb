package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the referenced listing or reservation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: an overlapping confirmed reservation was detected at
	// commit time. Safe to retry with different dates.
	ErrConflict = errors.New("dates conflict with an existing reservation")
)

// ValidationError reports malformed caller input. Never retried as-is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
