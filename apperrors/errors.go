// Package apperrors defines the failure taxonomy shared by the store,
// the lifecycle service and the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrNotFound           = errors.New("issue not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// ValidationError names every missing or malformed submission field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// Add records a failing field once.
func (e *ValidationError) Add(field string) {
	for _, f := range e.Fields {
		if f == field {
			return
		}
	}
	e.Fields = append(e.Fields, field)
}

// OrNil returns e when at least one field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ForbiddenError rejects an authenticated caller whose role is too low.
// Role is returned to the client for messaging.
type ForbiddenError struct {
	Role string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: this action requires government authorization (role %q)", e.Role)
}

// Unavailable wraps a storage driver error so it matches ErrStorageUnavailable
// while keeping the cause for logs.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
