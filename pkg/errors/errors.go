// Package errors defines the coded error type every layer returns. The code
// decides the HTTP status, the public message and whether internal details
// may reach the client.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeDuplicate     Code = "DUPLICATE_RESOURCE"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata is the transport contract of a Code.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

type trait uint8

const (
	retryable trait = 1 << iota
	exposeDetails
)

func meta(status int, public string, traits trait) Metadata {
	return Metadata{
		HTTPStatus:     status,
		PublicMessage:  public,
		Retryable:      traits&retryable != 0,
		DetailsAllowed: traits&exposeDetails != 0,
	}
}

var registry = map[Code]Metadata{
	CodeValidation:   meta(http.StatusBadRequest, "validation failed", exposeDetails),
	CodeUnauthorized: meta(http.StatusUnauthorized, "authentication required", 0),
	CodeForbidden:    meta(http.StatusForbidden, "access denied", 0),
	CodeNotFound:     meta(http.StatusNotFound, "resource not found", 0),
	CodeDuplicate:    meta(http.StatusConflict, "resource already exists", exposeDetails),
	// Lost an optimistic version race on the same aggregate.
	CodeConflict:      meta(http.StatusConflict, "resource was modified concurrently, please retry", retryable),
	CodeStateConflict: meta(http.StatusUnprocessableEntity, "state transition disallowed", exposeDetails),
	CodeIdempotency:   meta(http.StatusConflict, "idempotency key reused", exposeDetails),
	// Details carry the retry window.
	CodeRateLimit:  meta(http.StatusTooManyRequests, "rate limit exceeded", retryable|exposeDetails),
	CodeInternal:   meta(http.StatusInternalServerError, "internal server error", retryable),
	CodeDependency: meta(http.StatusServiceUnavailable, "dependency unavailable", retryable|exposeDetails),
}

// MetadataFor returns the contract for code; unknown codes are internal.
func MetadataFor(code Code) Metadata {
	if m, ok := registry[code]; ok {
		return m
	}
	return registry[CodeInternal]
}

// Error is a coded failure with an optional wrapped cause and client-facing
// details. The zero of *Error reads as CodeInternal.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf formats the message with fmt.Sprintf semantics.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a coded error. A nil cause behaves like New.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets client-facing details in place and returns e.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

// Retryable reports whether the client may repeat the request unchanged.
func (e *Error) Retryable() bool {
	return MetadataFor(e.Code()).Retryable
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return string(e.code) + ": " + e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another *Error by code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !stdErrors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.code == other.code
}

// IsCode reports whether the outermost coded error in err's chain has code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
