package records

import (
	"fmt"

	"github.com/mamadbah2/fleetbook/internal/repository"
)

// ValidationError reports a request the caller must fix.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError names the missing record. It matches repository.ErrNotFound
// under errors.Is.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Unwrap() error { return repository.ErrNotFound }

func notFound(resource string) error { return &NotFoundError{Resource: resource} }
