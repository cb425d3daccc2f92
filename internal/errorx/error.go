// Package errorx defines the typed errors returned by the draw pipeline.
//
// Every failure carries a Kind that transports map to a response status.
package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindCollaborator
	KindInvariant
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindCollaborator:
		return "collaborator"
	case KindInvariant:
		return "invariant"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Sentinels for errors.Is checks; matching is by kind only.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrCollaborator = &Error{Kind: KindCollaborator}
	ErrInvariant    = &Error{Kind: KindInvariant}
	ErrNotFound     = &Error{Kind: KindNotFound}
)

// Error is the domain error type.
type Error struct {
	Kind    Kind
	Message string // user-facing message
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Validation creates an error the caller can fix by correcting its input.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Collaborator wraps a failure of an upstream API.
func Collaborator(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindCollaborator, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Invariant reports inconsistent data that should never reach the core.
func Invariant(format string, args ...any) *Error {
	return &Error{Kind: KindInvariant, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing ledger entry.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps err to a transport status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindCollaborator:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Message returns the user-facing message of err. Untyped errors are hidden
// behind a generic message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInvariant || e.Kind == KindUnknown {
			return "服务器内部错误"
		}
		return e.Error()
	}
	return "服务器内部错误"
}
