package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a bookmark id does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or malformed field. It is returned
// before any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}
