// Package errors provides the coded error type used across ligpatch. Every
// failure that reaches the command line is an *AppError (or wraps one), so the
// CLI can report a single readable message and exit non-zero.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	// CodeMissingInput: a required directory or file is absent.
	CodeMissingInput ErrorCode = "MISSING_INPUT"
	// CodeMalformedContent: an input file exists but lacks what a step needs
	// (atom records, residue-name keys, anchor lines, section headers).
	CodeMalformedContent ErrorCode = "MALFORMED_CONTENT"
	// CodeFieldOverflow: a value does not fit a fixed-width output field.
	CodeFieldOverflow ErrorCode = "FIELD_OVERFLOW"
	// CodeIO: reading, writing or copying failed.
	CodeIO ErrorCode = "IO"
	// CodeInvalidConfig: configuration values are out of range.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	CodeUnknown       ErrorCode = "UNKNOWN"
)

// AppError is the error type returned by ligpatch packages.
// It supports errors.Is / errors.As through Unwrap.
type AppError struct {
	Code    ErrorCode
	Message string
	// Detail carries supplementary context such as file names.
	Detail string
	Cause  error
}

// Error formats the error as "<message>: <detail>: <cause>", omitting empty parts.
// The code is left out since it is meant for programs, not for users.
func (e *AppError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Cause.Error())
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a copy of the receiver with Detail set.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a copy of the receiver with Cause set.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf is New with a format string.
func Newf(code ErrorCode, format string, a ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, a...)}
}

// Wrap constructs an AppError around err. It returns nil if err is nil.
// When code is CodeUnknown and err already carries a code, that code is kept.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		code = GetCode(err)
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, code ErrorCode, format string, a ...interface{}) error {
	return Wrap(err, code, fmt.Sprintf(format, a...))
}

// IsCode reports whether any error in err's chain is an *AppError with code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			if ae.Code == code {
				return true
			}
			err = ae.Cause
			continue
		}
		return false
	}
	return false
}

// GetCode returns the code of the first *AppError in err's chain, or
// CodeUnknown.
func GetCode(err error) ErrorCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// MissingInput constructs a CodeMissingInput error.
func MissingInput(message string) *AppError {
	return New(CodeMissingInput, message)
}

// Malformed constructs a CodeMalformedContent error wrapping cause, which
// may be nil.
func Malformed(cause error, format string, a ...interface{}) *AppError {
	return &AppError{Code: CodeMalformedContent, Message: fmt.Sprintf(format, a...), Cause: cause}
}

// IO constructs a CodeIO error wrapping cause.
func IO(cause error, format string, a ...interface{}) *AppError {
	return &AppError{Code: CodeIO, Message: fmt.Sprintf(format, a...), Cause: cause}
}

// Is, As and Unwrap re-export the standard library helpers so callers
// need a single errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

func Unwrap(err error) error { return errors.Unwrap(err) }
