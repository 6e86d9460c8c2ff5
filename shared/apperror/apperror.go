// Package apperror defines the error kinds surfaced by the ledger services
// and their mapping onto HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInsufficientFunds   Code = "INSUFFICIENT_FUNDS"
	CodeCreditLimitExceeded Code = "CREDIT_LIMIT_EXCEEDED"
	CodeConflict            Code = "CONFLICT"
	CodeStorage             Code = "STORAGE_ERROR"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
)

type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so wrapped errors compare equal to the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrValidation          = &Error{Code: CodeValidation}
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrInsufficientFunds   = &Error{Code: CodeInsufficientFunds}
	ErrCreditLimitExceeded = &Error{Code: CodeCreditLimitExceeded}
	ErrConflict            = &Error{Code: CodeConflict}
	ErrStorage             = &Error{Code: CodeStorage}
	ErrUnauthorized        = &Error{Code: CodeUnauthorized}
	ErrForbidden           = &Error{Code: CodeForbidden}
)

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return New(CodeValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(CodeConflict, format, args...)
}

// Storage wraps an adapter failure. The cause is flattened into the message
// so driver error types cannot be recovered with errors.As past this point.
func Storage(op string, cause error) *Error {
	return &Error{Code: CodeStorage, Message: fmt.Sprintf("%s: %v", op, cause)}
}

// CodeOf returns the code carried by err, or CodeStorage for foreign errors.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeStorage
}

func MapErrorToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInsufficientFunds, CodeCreditLimitExceeded:
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
