// Package apperr defines the error kinds the API reports to clients.
//
// Services return *Error values; handlers translate the Kind into an HTTP
// status without looking at storage-specific codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers.
type Kind int

const (
	KindStore Kind = iota
	KindValidation
	KindReference
	KindNotFound
	KindConflict
	KindInsufficientPayment
	KindReferentialIntegrity
	KindUnauthenticated
	KindForbidden
)

var kindCodes = map[Kind]string{
	KindStore:                "STORE_ERROR",
	KindValidation:           "VALIDATION_ERROR",
	KindReference:            "REFERENCE_ERROR",
	KindNotFound:             "NOT_FOUND",
	KindConflict:             "CONFLICT",
	KindInsufficientPayment:  "INSUFFICIENT_PAYMENT",
	KindReferentialIntegrity: "REFERENTIAL_INTEGRITY",
	KindUnauthenticated:      "UNAUTHENTICATED",
	KindForbidden:            "FORBIDDEN",
}

// Code is the machine-readable name of the kind.
func (k Kind) Code() string {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return "UNKNOWN"
}

func (k Kind) String() string { return k.Code() }

// HTTPStatus maps a kind to the status code the API responds with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindReference, KindInsufficientPayment:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindReferentialIntegrity:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type.
type Error struct {
	Kind    Kind
	Message string // safe to show to clients
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error of the same kind, so errors.Is(err,
// apperr.ErrConflict) works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is.
var (
	ErrValidation           = &Error{Kind: KindValidation}
	ErrReference            = &Error{Kind: KindReference}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrConflict             = &Error{Kind: KindConflict}
	ErrInsufficientPayment  = &Error{Kind: KindInsufficientPayment}
	ErrReferentialIntegrity = &Error{Kind: KindReferentialIntegrity}
	ErrUnauthenticated      = &Error{Kind: KindUnauthenticated}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrStore                = &Error{Kind: KindStore}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func Reference(format string, args ...any) *Error  { return newf(KindReference, format, args...) }
func NotFound(format string, args ...any) *Error   { return newf(KindNotFound, format, args...) }
func Conflict(format string, args ...any) *Error   { return newf(KindConflict, format, args...) }
func InsufficientPayment(format string, args ...any) *Error {
	return newf(KindInsufficientPayment, format, args...)
}
func ReferentialIntegrity(format string, args ...any) *Error {
	return newf(KindReferentialIntegrity, format, args...)
}
func Unauthenticated(format string, args ...any) *Error {
	return newf(KindUnauthenticated, format, args...)
}
func Forbidden(format string, args ...any) *Error { return newf(KindForbidden, format, args...) }

// Store wraps an unexpected storage failure. The message stays generic; the
// cause is kept for logs.
func Store(op string, cause error) *Error {
	return &Error{Kind: KindStore, Message: op, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindStore
// for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// ClientMessage returns the message safe to show for err. Unclassified and
// store errors get an opaque text.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindStore && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
