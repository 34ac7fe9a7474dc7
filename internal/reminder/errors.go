package reminder

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks. The typed errors below unwrap to them.
var (
	ErrValidation        = errors.New("invalid reminder input")
	ErrNotFound          = errors.New("reminder not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCorruptRecord     = errors.New("corrupt reminder record")
)

// ValidationError reports malformed input to a factory method.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports a status update on an unknown id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("reminder %d not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidTransitionError reports a status change the state machine forbids.
type InvalidTransitionError struct {
	ID   int64
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("reminder %d: cannot move from %s to %s", e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// CorruptRecordError reports a stored row that cannot be parsed.
type CorruptRecordError struct {
	Line   int
	Reason string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record at line %d: %s", e.Line, e.Reason)
}

func (e *CorruptRecordError) Unwrap() error { return ErrCorruptRecord }
