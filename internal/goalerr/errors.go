// Package goalerr defines the typed error taxonomy surfaced at the query/goal
// public boundary: programmer errors (bad filter, bad selector), solver
// outcomes (no solution, protected removal), internal invariant violations,
// and I/O failures.
package goalerr

import (
	"errors"
	"fmt"
)

// Code classifies a failure the way the public API is allowed to report it.
type Code int

const (
	// BadQuery marks an invalid keyname/comparison/match-type combination
	// rejected at addFilter time.
	BadQuery Code = iota
	// BadSelector marks a malformed Selector (missing required filter,
	// optional-only filter set, wrong comparison flags).
	BadSelector
	// NoSolution marks a Goal.Run() that the solver could not satisfy.
	NoSolution
	// RemovalOfProtectedPkg marks a Goal.Run() whose only obstacle is that
	// the computed transaction would remove a protected package or the
	// running kernel.
	RemovalOfProtectedPkg
	// InternalError marks a violated internal invariant (e.g. reading
	// results before Run).
	InternalError
	// FileInvalid marks an I/O failure from WriteDebugdata or similar.
	FileInvalid
)

func (c Code) String() string {
	switch c {
	case BadQuery:
		return "BAD_QUERY"
	case BadSelector:
		return "BAD_SELECTOR"
	case NoSolution:
		return "NO_SOLUTION"
	case RemovalOfProtectedPkg:
		return "REMOVAL_OF_PROTECTED_PKG"
	case InternalError:
		return "INTERNAL_ERROR"
	case FileInvalid:
		return "FILE_INVALID"
	default:
		return "UNKNOWN"
	}
}

// Error is the typed error value every public failure is converted to
// before it crosses a package boundary. It always carries a localized,
// human-readable Message in addition to the machine-readable Code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, target) match when target is an *Error with the
// same Code; use HasCode to test an error against a bare Code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// New builds an *Error with no wrapped cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around an existing cause, teacher-style "%w" chaining
// but with an attached Code for the public taxonomy.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// HasCode is a convenience for call sites that only have an `error`.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
