package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Discount pipeline errors. Upstream data problems surface as 422, operator
// aborts as 409, unreachable academic records service as 502.
var (
	ErrTermNotFound       = New("TERM_NOT_FOUND", http.StatusUnprocessableEntity, "no kardex entry matches the target term")
	ErrParse              = New("PARSE_ERROR", http.StatusUnprocessableEntity, "malformed upstream record")
	ErrPersonNotFound     = New("PERSON_NOT_FOUND", http.StatusUnprocessableEntity, "no person matches the document")
	ErrCareerNotInCatalog = New("CAREER_NOT_IN_CATALOG", http.StatusUnprocessableEntity, "career is not in the tariff catalog")
	ErrPaymentNotFound    = New("PAYMENT_NOT_FOUND", http.StatusUnprocessableEntity, "registration payment not found")
	ErrBatchCancelled     = New("BATCH_CANCELLED", http.StatusConflict, "batch cancelled by operator")
	ErrGroupTooSmall      = New("GROUP_TOO_SMALL", http.StatusBadRequest, "sibling group needs at least two students")
	ErrUpstreamFailure    = New("UPSTREAM_FAILURE", http.StatusBadGateway, "academic records service unavailable")
	ErrPromptNotFound     = New("PROMPT_NOT_FOUND", http.StatusNotFound, "prompt no longer pending")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// HasCode reports whether err resolves to an *Error with target's code.
func HasCode(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
