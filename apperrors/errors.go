package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so callers can tell "not found" from "not allowed" from "wrong state".
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindForbidden       Kind = "forbidden"
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindUnavailable     Kind = "unavailable"
)

// AppError is the error type returned by the messaging workflow for every
// caller-visible rejection.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
	Cause   error
}

// Error returns the message, followed by the cause when one is set.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error { return e.Cause }

// Constructors

// NotFound reports a missing resource (404).
func NotFound(code, message string) error {
	return &AppError{Kind: KindNotFound, Code: code, Message: message, Status: http.StatusNotFound}
}

// Conflict reports a state conflict (duplicate, already processed). It maps to 400
// because clients treat these as bad requests against the current state.
func Conflict(code, message string) error {
	return &AppError{Kind: KindConflict, Code: code, Message: message, Status: http.StatusBadRequest}
}

// Referenced reports a delete blocked by another row still pointing at the target.
func Referenced(code, message string) error {
	return &AppError{Kind: KindConflict, Code: code, Message: message, Status: http.StatusConflict}
}

// Forbidden reports an authenticated caller acting outside their rights.
func Forbidden(code, message string) error {
	return &AppError{Kind: KindForbidden, Code: code, Message: message, Status: http.StatusForbidden}
}

// Validation reports malformed or out-of-range input.
func Validation(code, message string) error {
	return &AppError{Kind: KindValidation, Code: code, Message: message, Status: http.StatusBadRequest}
}

// Unauthenticated reports a request without a usable identity.
func Unauthenticated(code, message string) error {
	return &AppError{Kind: KindUnauthenticated, Code: code, Message: message, Status: http.StatusUnauthorized}
}

// Unavailable reports a disabled or unreachable dependency.
func Unavailable(code, message string) error {
	return &AppError{Kind: KindUnavailable, Code: code, Message: message, Status: http.StatusServiceUnavailable}
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
