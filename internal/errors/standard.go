// Package errors provides standardized error messaging for elfcore.
package errors

import (
	"fmt"
	"runtime"
)

// ErrorCategory classifies a StandardError by the kind of failure it
// reports.
type ErrorCategory int

const (
	CategoryIO ErrorCategory = iota
	CategoryFormat
	CategoryBounds
	CategoryMutation
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryIO:
		return "io"
	case CategoryFormat:
		return "format"
	case CategoryBounds:
		return "bounds"
	case CategoryMutation:
		return "mutation"
	default:
		return "unknown"
	}
}

// StandardError is a category-coded error with an optional wrapped cause
// and the caller that constructed it.
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
	Wrapped  error
}

// Error implements the error interface.
func (e *StandardError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s:%s] %s (caller: %s): %v", e.Category, e.Code, e.Message, e.Caller, e.Wrapped)
	}

	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Code, e.Message, e.Caller)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *StandardError) Unwrap() error {
	return e.Wrapped
}

// NewStandardError creates a new standardized error, capturing its
// immediate caller.
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	return newStandardError(category, code, message, context, nil, 2)
}

func newStandardError(category ErrorCategory, code, message string, context map[string]interface{}, wrapped error, skip int) *StandardError {
	caller := "unknown"

	if pc, _, _, ok := runtime.Caller(skip); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
		Wrapped:  wrapped,
	}
}

// IoError reports a failure to load or read a region's backing storage,
// wrapping the underlying error so errors.Is/errors.As still reach it.
func IoError(op string, err error) *StandardError {
	return newStandardError(CategoryIO, "IO_ERROR", op, map[string]interface{}{"op": op}, err, 2)
}

// NotFound reports a region load target (usually a file path) that does not exist.
func NotFound(path string) *StandardError {
	return newStandardError(CategoryIO, "NOT_FOUND",
		fmt.Sprintf("not found: %s", path),
		map[string]interface{}{"path": path}, nil, 2)
}

// InvalidFormat reports a structural ELF parse failure: bad magic, truncation,
// or a field inconsistency discovered while parsing.
func InvalidFormat(reason string) *StandardError {
	return newStandardError(CategoryFormat, "INVALID_FORMAT", reason, nil, nil, 2)
}

// OutOfRange reports a chunk slice or region access exceeding its source.
func OutOfRange(offset, length, sourceLength uint64) *StandardError {
	return newStandardError(CategoryBounds, "OUT_OF_RANGE",
		fmt.Sprintf("range [%d, %d) exceeds source of length %d", offset, offset+length, sourceLength),
		map[string]interface{}{"offset": offset, "length": length, "source_length": sourceLength}, nil, 2)
}

// Failed reports a mutation rejected because it would violate an Elf invariant.
func Failed(reason string) *StandardError {
	return newStandardError(CategoryMutation, "FAILED", reason, nil, nil, 2)
}
