// Package services defines the business logic for auth, sites, personas,
// comments, and rate limiting. This file centralizes the closed service-level
// error taxonomy so that every failure a handler can observe is one of the
// variants below, translated to HTTP exactly once at the handler boundary.
//
// These errors are intended for internal use by the service layer; conversion
// into user-facing messages and HTTP status codes is performed centrally in
// the handlers package.
package services

import (
	"errors"
	"fmt"
	"time"
)

// Authentication errors.
var (
	// ErrInvalidCredentials is returned when an email/password pair does not
	// match a registered user.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenExpired indicates the bearer token was valid but has expired.
	// Handlers map it to a distinct message so clients can silently refresh.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid covers every other token verification failure.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrDuplicateEmail is returned when registering an already-known email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Resource errors.
var (
	// ErrNotOwner indicates the resource exists but belongs to another user.
	// Ownership is checked before any mutation.
	ErrNotOwner = errors.New("resource not owned by caller")

	// ErrSiteNotFound indicates the requested site does not exist.
	ErrSiteNotFound = errors.New("site not found")

	// ErrPersonaNotFound indicates the requested persona does not exist.
	ErrPersonaNotFound = errors.New("persona not found")

	// ErrCommentNotFound indicates the requested comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")
)

// ValidationError reports missing or malformed input fields. The message is
// safe to show to users.
type ValidationError struct {
	Msg string
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AsValidation reports whether err is (or wraps) a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// UpstreamError reports a WordPress or LLM provider failure. Msg is already
// sanitized: credential patterns are scrubbed before construction.
type UpstreamError struct {
	Msg string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string { return e.Msg }

// AsUpstream reports whether err is (or wraps) an UpstreamError.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// RateLimitError reports quota exhaustion for a fixed-window counter.
// NextAttempt is the earliest time the caller may retry.
type RateLimitError struct {
	NextAttempt time.Time
}

// Error implements the error interface.
func (e *RateLimitError) Error() string { return "rate limit exceeded" }

// AsRateLimit reports whether err is (or wraps) a RateLimitError.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var re *RateLimitError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
