// Package errors provides standardized domain errors with codes for the Rolodex API.
//
// Usage:
//
//	// In services - return typed errors
//	if errors.Is(err, store.ErrAlreadyExists) {
//	    return errors.ValidationWithDetails("validation failed", errors.FieldErrors{
//	        "email": {"has already been taken"},
//	    })
//	}
//
//	// At the request boundary - classify by code
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    status := domainErr.HTTPStatus()
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeValidation   Code = "VALIDATION"
	CodeIntegrity    Code = "INTEGRITY"
	CodeInvalidToken Code = "INVALID_TOKEN"
	CodeInternal     Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeValidation, CodeIntegrity, CodeInvalidToken:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// FieldErrors maps a request field to its validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
	stack   []uintptr
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" && e.cause != nil {
		return e.cause.Error()
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Fields returns the field error map for validation errors, or nil.
func (e *Error) Fields() FieldErrors {
	if f, ok := e.Details.(FieldErrors); ok {
		return f
	}
	return nil
}

// StackTrace returns the call stack captured when the error was created,
// formatted as "function file:line" entries. Nil if no stack was captured.
func (e *Error) StackTrace() []string {
	return formatStack(e.stack)
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
		stack:   e.stack,
	}
}

// Kinds name the condition behind an error. They are what clients see in the
// "error" field of classified responses.
const (
	KindRecordNotFound           = "RecordNotFound"
	KindParameterMissing         = "ParameterMissing"
	KindParameterInvalid         = "ParameterInvalid"
	KindRecordInvalid            = "RecordInvalid"
	KindRecordNotUnique          = "RecordNotUnique"
	KindInvalidForeignKey        = "InvalidForeignKey"
	KindInvalidAuthenticityToken = "InvalidAuthenticityToken"
	KindInternal                 = "InternalError"
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Kind: KindRecordNotFound, Message: msg}
}

// BadRequest creates an error for a missing or malformed request parameter.
func BadRequest(msg string) *Error {
	return &Error{Code: CodeBadRequest, Kind: KindParameterMissing, Message: msg}
}

// BadRequestf creates a bad request error with formatted message.
func BadRequestf(format string, args ...any) *Error {
	return BadRequest(fmt.Sprintf(format, args...))
}

// MalformedParameter creates a bad request error for a parameter that was
// present but could not be parsed.
func MalformedParameter(msg string) *Error {
	return &Error{Code: CodeBadRequest, Kind: KindParameterInvalid, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Kind: KindRecordInvalid, Message: msg}
}

// ValidationWithDetails creates a validation error with per-field details.
func ValidationWithDetails(msg string, details FieldErrors) *Error {
	return &Error{Code: CodeValidation, Kind: KindRecordInvalid, Message: msg, Details: details}
}

// FieldInvalid creates a validation error carrying a single field message.
func FieldInvalid(field, msg string) *Error {
	return ValidationWithDetails("validation failed", FieldErrors{field: {msg}})
}

// Integrity creates a constraint violation error of the given kind.
func Integrity(kind, msg string) *Error {
	return &Error{Code: CodeIntegrity, Kind: kind, Message: msg}
}

// InvalidToken creates an invalid authenticity token error.
func InvalidToken(msg string) *Error {
	return &Error{Code: CodeInvalidToken, Kind: KindInvalidAuthenticityToken, Message: msg}
}

// WithStack marks err as an unclassified internal failure and records the
// caller's stack. The message stays err's own. Nil and errors that already
// carry a stack are returned unchanged.
func WithStack(err error) error {
	if err == nil || Stack(err) != nil {
		return err
	}
	return &Error{Code: CodeInternal, Kind: KindInternal, cause: err, stack: callers()}
}

// StackTracer is implemented by errors that carry a captured call stack.
type StackTracer interface {
	StackTrace() []string
}

// Stack returns the stack carried by err or any error it wraps.
func Stack(err error) []string {
	var st StackTracer
	if errors.As(err, &st) {
		if frames := st.StackTrace(); len(frames) > 0 {
			return frames
		}
	}
	return nil
}

// CurrentStack captures the stack of the calling goroutine, skipping skip frames
// above the caller.
func CurrentStack(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)
	return formatStack(pcs[:n])
}

func callers() []uintptr {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}

func formatStack(pcs []uintptr) []string {
	if len(pcs) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs)
	out := make([]string, 0, len(pcs))
	for {
		f, more := frames.Next()
		out = append(out, f.Function+" "+f.File+":"+strconv.Itoa(f.Line))
		if !more {
			break
		}
	}
	return out
}
