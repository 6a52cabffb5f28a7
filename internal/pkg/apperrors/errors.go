// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by all domain services. Handlers translate them into
// HTTP statuses through StatusCode.
var (
	ErrNotFound           = errors.New("not found")
	ErrOwnershipViolation = errors.New("ownership violation")
	ErrFundingInProgress  = errors.New("funding in progress")
	ErrDuplicateCopy      = errors.New("duplicate copy")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Error couples a sentinel kind with a message meant for the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates an error of the given kind
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message
func Newf(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound is a shortcut for a missing entity
func NotFound(entity string) *Error {
	return Newf(ErrNotFound, "%s not found", entity)
}

// StatusCode maps an error to the HTTP status the transport should answer with
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrOwnershipViolation):
		return http.StatusForbidden
	case errors.Is(err, ErrFundingInProgress), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrDuplicateCopy), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to show to API clients.
// Unclassified errors never leak their internals.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if StatusCode(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
