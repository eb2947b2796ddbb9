package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents a lookup that returned no data (e.g. HTTP 404).
// Callers treat it as a recoverable miss and typically negative-cache it.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given resource and identifier
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFoundError reports whether err is a NotFoundError (even when wrapped)
func IsNotFoundError(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}
