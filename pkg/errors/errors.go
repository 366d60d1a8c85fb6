package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType classifies chunking engine failures
type ErrorType string

const (
	// InvalidArgument signals bad options or kernel preconditions
	InvalidArgument ErrorType = "invalid_argument"
	// BudgetExceeded signals content that cannot fit a fresh chunk
	BudgetExceeded ErrorType = "budget_exceeded"
	// SingularMatrix signals a near-singular pivot in the numeric kernels
	SingularMatrix ErrorType = "singular_matrix"
	// ExternalCallFailure signals a failed embedding, chat or inference call
	ExternalCallFailure ErrorType = "external_call_failure"
)

// ChunkError is a structured application error
type ChunkError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	File       string                 `json:"file,omitempty"`
	Line       int                    `json:"line,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	InnerError error                  `json:"-"` // Not serialized
}

// Error implements the error interface
func (e *ChunkError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the inner error
func (e *ChunkError) Unwrap() error {
	return e.InnerError
}

// WithContext adds context to the error
func (e *ChunkError) WithContext(key string, value interface{}) *ChunkError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new ChunkError
func New(errType ErrorType, code, message string) *ChunkError {
	err := &ChunkError{
		Type:    errType,
		Code:    code,
		Message: message,
	}

	if _, file, line, ok := runtime.Caller(1); ok {
		err.File = file
		err.Line = line
	}

	return err
}

// Newf creates a new ChunkError with formatted message
func Newf(errType ErrorType, code, format string, args ...interface{}) *ChunkError {
	return New(errType, code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, code, message string) *ChunkError {
	chunkErr := New(errType, code, message)
	chunkErr.InnerError = err
	if err != nil {
		chunkErr.Details = err.Error()
	}
	return chunkErr
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, errType ErrorType, code, format string, args ...interface{}) *ChunkError {
	return Wrap(err, errType, code, fmt.Sprintf(format, args...))
}

// IsType reports whether err (or any error it wraps) has the given type
func IsType(err error, errType ErrorType) bool {
	var chunkErr *ChunkError
	if errors.As(err, &chunkErr) {
		return chunkErr.Type == errType
	}
	return false
}

// Predefined error constructors

// NewInvalidArgument creates an invalid argument error
func NewInvalidArgument(message string) *ChunkError {
	return New(InvalidArgument, "INVALID_ARGUMENT", message)
}

// NewBudgetExceeded creates a budget exceeded error
func NewBudgetExceeded(message string) *ChunkError {
	return New(BudgetExceeded, "BUDGET_EXCEEDED", message)
}

// NewSingularMatrix creates a singular matrix error
func NewSingularMatrix(message string) *ChunkError {
	return New(SingularMatrix, "SINGULAR_MATRIX", message)
}

// NewExternalCallFailure creates an external call failure error
func NewExternalCallFailure(message string) *ChunkError {
	return New(ExternalCallFailure, "EXTERNAL_CALL_FAILED", message)
}
