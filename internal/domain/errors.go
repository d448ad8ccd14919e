package domain

import (
	"errors"
	"fmt"
)

// ValidationError means a business precondition was violated and the
// operation was aborted with no partial writes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError means a referenced record does not exist.
type NotFoundError struct {
	Kind string
	Ref  string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " " + e.Ref + " not found"
}

func NotFound(kind string, id int64) error {
	return &NotFoundError{Kind: kind, Ref: fmt.Sprintf("%d", id)}
}

func NotFoundRef(kind, ref string) error {
	return &NotFoundError{Kind: kind, Ref: ref}
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// ConsistencyError means stored data broke an internal invariant. It is
// always a bug, never a normal business outcome.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return "consistency violation: " + e.Reason
}

func Consistencyf(format string, args ...any) error {
	return &ConsistencyError{Reason: fmt.Sprintf(format, args...)}
}

func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
