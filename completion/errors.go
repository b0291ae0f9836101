package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorCode classifies completion transport errors.
type ErrorCode int

const (
	// ErrCodeConnection indicates a connection failure (refused, DNS, etc).
	ErrCodeConnection ErrorCode = iota
	// ErrCodeTimeout indicates a request or connection timeout.
	ErrCodeTimeout
	// ErrCodeAuth indicates an authentication/authorization failure (401/403).
	ErrCodeAuth
	// ErrCodeNotFound indicates an unknown endpoint or model (404).
	ErrCodeNotFound
	// ErrCodeRateLimit indicates rate limiting by the backend (429).
	ErrCodeRateLimit
	// ErrCodeRequest indicates the backend rejected the request (other 4xx).
	ErrCodeRequest
	// ErrCodeServer indicates a backend-side error (5xx).
	ErrCodeServer
	// ErrCodeDecode indicates a malformed or undecodable response body.
	ErrCodeDecode
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeConnection:
		return "connection"
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeRequest:
		return "request"
	case ErrCodeServer:
		return "server"
	case ErrCodeDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a structured completion transport error with classification.
type Error struct {
	// Status is the HTTP status code (0 for connection-level errors).
	Status int
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Retryable indicates whether the call may be retried.
	Retryable bool
	// Body is the response body, truncated for storage (may be empty).
	Body string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("completion: %s (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("completion: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a retryable connection-level error.
func NewConnectionError(err error) *Error {
	return &Error{
		Code:      ErrCodeConnection,
		Message:   err.Error(),
		Retryable: true,
		Err:       err,
	}
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{
		Code:      ErrCodeTimeout,
		Message:   err.Error(),
		Retryable: true,
		Err:       err,
	}
}

// maxBodyLen bounds how much response body an Error retains.
const maxBodyLen = 2048

func truncateBody(s string) string {
	if len(s) <= maxBodyLen {
		return s
	}
	return s[:maxBodyLen] + "... (truncated)"
}

// NewDecodeError creates a terminal error for an undecodable response body.
func NewDecodeError(body string, err error) *Error {
	return &Error{
		Code:      ErrCodeDecode,
		Message:   err.Error(),
		Retryable: false,
		Body:      truncateBody(body),
		Err:       err,
	}
}

// NewStatusError creates a typed error for a non-2xx HTTP status.
// It is equivalent to ClassifyStatus but never returns nil: 2xx statuses
// are reported as a terminal server error, for callers that already know
// the status is unexpected.
func NewStatusError(status int, body string) *Error {
	if e := ClassifyStatus(status, body); e != nil {
		return e
	}
	return &Error{
		Status:    status,
		Code:      ErrCodeServer,
		Message:   fmt.Sprintf("unexpected HTTP %d", status),
		Retryable: false,
		Body:      truncateBody(body),
	}
}

// ClassifyTransportError converts a transport-level error from an HTTP
// client into a typed error. Timeouts become retryable timeout errors,
// everything else a retryable connection error. Context cancellation
// passes through unchanged so callers can tell a caller-initiated abort
// from a backend failure.
func ClassifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

// ClassifyStatus converts an HTTP status code into a typed error.
// Returns nil for 2xx. 408, 429 and 5xx are retryable; other 4xx are
// terminal.
func ClassifyStatus(status int, body string) *Error {
	body = truncateBody(body)
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == 401 || status == 403:
		return &Error{
			Status:    status,
			Code:      ErrCodeAuth,
			Message:   fmt.Sprintf("HTTP %d", status),
			Retryable: false,
			Body:      body,
		}
	case status == 404:
		return &Error{
			Status:    status,
			Code:      ErrCodeNotFound,
			Message:   "HTTP 404",
			Retryable: false,
			Body:      body,
		}
	case status == 408:
		return &Error{
			Status:    status,
			Code:      ErrCodeTimeout,
			Message:   "HTTP 408",
			Retryable: true,
			Body:      body,
		}
	case status == 429:
		return &Error{
			Status:    status,
			Code:      ErrCodeRateLimit,
			Message:   "HTTP 429",
			Retryable: true,
			Body:      body,
		}
	case status >= 400 && status < 500:
		return &Error{
			Status:    status,
			Code:      ErrCodeRequest,
			Message:   fmt.Sprintf("HTTP %d", status),
			Retryable: false,
			Body:      body,
		}
	default:
		return &Error{
			Status:    status,
			Code:      ErrCodeServer,
			Message:   fmt.Sprintf("HTTP %d", status),
			Retryable: true,
			Body:      body,
		}
	}
}

// IsRetryable checks if an error is a retryable completion error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsRateLimited checks if an error is a rate-limit error.
func IsRateLimited(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeRateLimit
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeAuth
}
