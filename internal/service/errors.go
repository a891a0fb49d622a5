package service

import "fmt"

// ValidationError reports bad input shape or range. Recoverable; nothing was
// mutated.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PermissionError reports that the actor lacks the required permission.
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Action)
}

// StateConflictError reports an operation attempted against a record not in
// the required state. When the conflicting state is the operation's own
// outcome (re-approving an approved loan, re-paying a paid fine) AlreadyDone
// is set and callers should report an informational "already done" message
// instead of a hard failure.
type StateConflictError struct {
	Msg         string
	AlreadyDone bool
}

func (e *StateConflictError) Error() string { return e.Msg }

func conflictf(format string, args ...interface{}) error {
	return &StateConflictError{Msg: fmt.Sprintf(format, args...)}
}

func alreadyDonef(format string, args ...interface{}) error {
	return &StateConflictError{Msg: fmt.Sprintf(format, args...), AlreadyDone: true}
}

// NotFoundError reports that a referenced record does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}
