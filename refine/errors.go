package refine

import (
	"errors"
	"fmt"
)

// ErrorCode classifies engine errors.
type ErrorCode int

const (
	// ErrCodePlanning indicates degenerate chunk policy or invalid input
	// (overlap not smaller than the chunk size, unordered segments).
	ErrCodePlanning ErrorCode = iota
	// ErrCodeService indicates a correction backend failure. The engine
	// does not retry; retry policy lives in the completion client.
	ErrCodeService
	// ErrCodeParse indicates a malformed or schema-invalid correction
	// payload for a given chunk.
	ErrCodeParse
	// ErrCodeInvariant indicates a reconciliation invariant violation
	// (segment reference outside the input range). These are clamped and
	// logged during a run, never returned as a failure.
	ErrCodeInvariant
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodePlanning:
		return "planning"
	case ErrCodeService:
		return "service"
	case ErrCodeParse:
		return "parse"
	case ErrCodeInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error is a structured engine error identifying the failing stage and,
// where applicable, the failing chunk.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// Chunk is the failing chunk index, or -1 when not chunk-scoped.
	Chunk int
	// Message describes the error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Chunk >= 0 {
		return fmt.Sprintf("refine: %s (chunk %d): %s", e.Code, e.Chunk, e.Message)
	}
	return fmt.Sprintf("refine: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewPlanningError creates a planning error. Planning errors are never
// chunk-scoped.
func NewPlanningError(msg string) *Error {
	return &Error{Code: ErrCodePlanning, Chunk: -1, Message: msg}
}

// NewServiceError wraps a correction backend failure for a chunk.
func NewServiceError(chunk int, err error) *Error {
	return &Error{Code: ErrCodeService, Chunk: chunk, Message: err.Error(), Err: err}
}

// NewParseError creates a parse error for a chunk's payload. err may be nil
// when the payload was structurally absent rather than undecodable.
func NewParseError(chunk int, msg string, err error) *Error {
	return &Error{Code: ErrCodeParse, Chunk: chunk, Message: msg, Err: err}
}

// NewInvariantError describes an out-of-range segment reference. It is
// logged, not returned: the engine clamps and continues.
func NewInvariantError(chunk int, msg string) *Error {
	return &Error{Code: ErrCodeInvariant, Chunk: chunk, Message: msg}
}

// IsPlanning checks if an error is a planning error.
func IsPlanning(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodePlanning
}

// IsService checks if an error is a correction backend error.
func IsService(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeService
}

// IsParse checks if an error is a payload parse error.
func IsParse(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeParse
}

// FailedChunk returns the chunk index an error is scoped to, or -1.
func FailedChunk(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Chunk
	}
	return -1
}
