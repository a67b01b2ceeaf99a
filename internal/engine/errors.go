package engine

import (
	"errors"
	"fmt"
)

// CommandError reports a command the engine cannot dispatch.
//
// Engine operations themselves never fail: malformed times and durations are
// clamped or ignored. CommandError only covers the serialised write surface
// (scripts, journals, scenario steps) where an op name can be wrong.
type CommandError struct {
	// Code identifies the error category.
	Code CommandErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the command's position in a script or journal, or -1.
	Index int

	// Op is the offending op name, if any.
	Op string
}

// CommandErrorCode categorizes command errors.
type CommandErrorCode string

const (
	// ErrCodeUnknownOp indicates an op name the engine does not implement.
	ErrCodeUnknownOp CommandErrorCode = "UNKNOWN_OP"

	// ErrCodeMissingArg indicates an op without a required argument.
	ErrCodeMissingArg CommandErrorCode = "MISSING_ARG"

	// ErrCodeSessionClosed indicates a command submitted to a stopped session.
	ErrCodeSessionClosed CommandErrorCode = "SESSION_CLOSED"
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (command %d, op=%q)", e.Code, e.Message, e.Index, e.Op)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (op=%q)", e.Code, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownOp reports whether err is an unknown-op CommandError.
// Uses errors.As to handle wrapped errors.
func IsUnknownOp(err error) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeUnknownOp
	}
	return false
}

// IsSessionClosed reports whether err reports a stopped session.
func IsSessionClosed(err error) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeSessionClosed
	}
	return false
}

// withIndex returns a copy of err positioned at index, if it is a
// CommandError.
func withIndex(err error, index int) error {
	var ce *CommandError
	if errors.As(err, &ce) {
		cp := *ce
		cp.Index = index
		return &cp
	}
	return fmt.Errorf("command %d: %w", index, err)
}
