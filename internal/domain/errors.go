package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalid         Kind = "invalid"
	KindInternal        Kind = "internal"
)

// Error is a classified error carried across service boundaries
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// E creates a classified error
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around a cause
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// MessageOf extracts the user-facing message from an error chain
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}
