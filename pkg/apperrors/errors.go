package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error that carries the HTTP status it should be
// surfaced with and a message that is safe to expose to clients. Wrapped
// causes stay internal and are only ever logged.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with an explicit status and client-safe message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Validation is a 422 for malformed or out-of-range input.
func Validation(message string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: message}
}

// Conflict is a 409, e.g. a duplicate email on registration.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// Unauthorized is a 401 for bad credentials, a missing or wrong internal
// token, or an invalid/expired refresh token.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// UpstreamUnavailable signals the gateway could not get a usable response
// from the auth service. The message is always the generic one; the real
// cause travels in Err for logging only.
func UpstreamUnavailable(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: MsgUpstreamUnavailable, Err: err}
}

// Internal is a 500 with a generic message; the cause is kept for logs.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

// MsgUpstreamUnavailable is the only text the gateway exposes when the auth
// service times out, is unreachable, or answers with a 5xx.
const MsgUpstreamUnavailable = "Authentication service is unavailable"

// StatusOf extracts the HTTP status from err, defaulting to 500 for
// anything that is not an *Error.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the client-safe message from err. Unknown errors never
// leak their text; callers get the generic internal message instead.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
