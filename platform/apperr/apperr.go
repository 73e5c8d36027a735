// Package apperr defines the typed errors services return. The HTTP layer
// maps their Kind to a status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of an error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: the record does not exist for the caller's tenant.
	KindNotFound
	// KindValidation: the request is well-formed but violates a rule.
	KindValidation
	// KindForbidden: the caller may not act on the resource.
	KindForbidden
	// KindConflict: the record already exists.
	KindConflict
	KindInternal
	// KindStorage: the object store rejected or failed an operation.
	KindStorage
)

// Error is a domain error with a typed Kind.
type Error struct {
	Kind    Kind
	Message string
	Op      string // optional
	Err     error  // optional cause
	Details any    // optional, sent to the client
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the Kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the failing operation, prefixed to Error().
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails attaches data the HTTP layer sends alongside the message.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Storage wraps an object store failure.
func Storage(message string, err error) *Error {
	return Wrap(KindStorage, message, err)
}

// GetKind returns the Kind of the first *Error in err's chain, or KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err's chain holds an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
