package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific failure of the board pipeline.
type ErrorCode string

const (
	// ErrCodeValidationFailed indicates missing or malformed input.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrCodePersonaLookupFailed indicates the user's personas could not be loaded or none exist.
	ErrCodePersonaLookupFailed ErrorCode = "PERSONA_LOOKUP_FAILED"
	// ErrCodeGenerationFailed indicates a model call failed or returned nothing usable.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	// ErrCodePersistenceFailed indicates the history batch could not be written.
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	// ErrCodeNotFound indicates the requested member does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodePermissionDenied indicates the member belongs to another user.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal is used for errors that carry no code.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// BoardError represents a structured error for board operations.
type BoardError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *BoardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BoardError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *BoardError) WithContext(key string, value any) *BoardError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Convenience constructors for common error types.

func ValidationFailed(msg string) *BoardError {
	return &BoardError{Code: ErrCodeValidationFailed, Message: msg}
}

func PersonaLookupFailed(msg string, cause error) *BoardError {
	return &BoardError{Code: ErrCodePersonaLookupFailed, Message: msg, Cause: cause}
}

func GenerationFailed(msg string, cause error) *BoardError {
	return &BoardError{Code: ErrCodeGenerationFailed, Message: msg, Cause: cause}
}

func PersistenceFailed(msg string, cause error) *BoardError {
	return &BoardError{Code: ErrCodePersistenceFailed, Message: msg, Cause: cause}
}

func NotFound(msg string) *BoardError {
	return &BoardError{Code: ErrCodeNotFound, Message: msg}
}

func PermissionDenied(msg string) *BoardError {
	return &BoardError{Code: ErrCodePermissionDenied, Message: msg}
}

func RateLimitExceeded(msg string) *BoardError {
	return &BoardError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

func Timeout(msg string, cause error) *BoardError {
	return &BoardError{Code: ErrCodeTimeout, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *BoardError {
	return &BoardError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error, or any error it wraps, carries code.
func IsCode(err error, code ErrorCode) bool {
	var boardErr *BoardError
	if errors.As(err, &boardErr) {
		return boardErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a BoardError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var boardErr *BoardError
	if errors.As(err, &boardErr) {
		return boardErr.Code
	}
	return defaultCode
}
