// Package hfterrors defines the engine's error taxonomy: a closed set
// of codes distinguishing API-boundary validation failures from
// internal faults. Exchange-side rejections are never errors -- they
// are reported back as order status and never raised.
package hfterrors

import "fmt"

// Code identifies an error kind.
type Code string

const (
	CodeOrderIdDuplicate  Code = "ORDER_ID_DUPLICATE"
	CodeInvalidOrderParams Code = "INVALID_ORDER_PARAMS"
	CodeOrderNotFound     Code = "ORDER_NOT_FOUND"
	CodeDataValidation    Code = "DATA_VALIDATION_ERROR"
	CodeInternal          Code = "INTERNAL"
)

// Error is the engine's error value.
type Error struct {
	Code      Code
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// New constructs an Error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Retryable: isRetryable(code)}
}

// Newf constructs a formatted Error.
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func isRetryable(code Code) bool {
	// None of the defined codes are retryable: duplicate/invalid/not-found
	// are caller mistakes, and a data validation error means the run
	// cannot proceed at all.
	return false
}

// Is reports whether err is an *Error carrying the given code.
func Is(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}

var (
	ErrOrderIdDuplicate = New(CodeOrderIdDuplicate, "order id already exists and is not terminal")
	ErrOrderNotFound    = New(CodeOrderNotFound, "order not found")
)
