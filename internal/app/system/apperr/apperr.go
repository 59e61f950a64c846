// internal/app/system/apperr/apperr.go
// Package apperr is the error taxonomy shared by stores, the tenant and
// authorization layers, and HTTP handlers. Each error carries a Kind that
// maps to exactly one HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindTooManyRequests
)

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified, client-presentable error. Msg is safe to show to
// callers; Err (if any) is the underlying cause and is never rendered.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two app errors with the same kind and message,
// so package-level sentinels compare equal after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Msg: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }

// TooManyRequests reports a rate-limited caller.
func TooManyRequests(msg string) *Error { return &Error{Kind: KindTooManyRequests, Msg: msg} }

// Validationf formats a validation message.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Internal wraps an unexpected fault. The message shown to clients is
// generic; the cause is kept for logging.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: "internal server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf classifies any error. Unclassified errors are internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return "internal server error"
}

// IsKind reports whether err is classified as k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
