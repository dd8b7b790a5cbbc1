package booking

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the requested dates conflict with an
// existing reservation, including when a concurrent request won the race.
var ErrUnavailable = errors.New("booking: requested dates are unavailable")

// ValidationError reports which input field failed and why, so the caller
// can correct it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: invalid %s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
