package services

import (
	"errors"
	"net/http"
)

// ErrorKind classifies domain failures. The taxonomy is closed: every
// failure a store or the invitation engine can return to callers is one of
// these kinds, and none of them is retryable for the same input.
type ErrorKind string

const (
	// KindValidation is a missing or blank required field.
	KindValidation ErrorKind = "validation"
	// KindConflict is a uniqueness violation (custom role name, membership).
	KindConflict ErrorKind = "conflict"
	// KindNotFound is an unknown id.
	KindNotFound ErrorKind = "not_found"
	// KindInvalidState is a transition attempted on a terminal invitation.
	KindInvalidState ErrorKind = "invalid_state"
	// KindUnauthorized is an identity or ownership mismatch.
	KindUnauthorized ErrorKind = "unauthorized"
)

// Error is a typed domain error. Callers branch on Kind (or use KindOf);
// the transport layer maps it to an HTTP status via HTTPStatus.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus maps the error kind to an HTTP status for the transport layer.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func newValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func newConflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func newNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func newInvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

func newUnauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// KindOf returns the kind of a domain error, or "" for any other error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
