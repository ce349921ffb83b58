package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTaskNotFound is returned when a task id resolves to no stored document.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError reports a task document that failed field or enum
// validation. The operation that triggered the read or write is aborted and
// no partial state is committed.
type ValidationError struct {
	TaskID string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed for task %s: %s %s", e.TaskID, e.Field, e.Reason)
}

// CycleError reports an edge that would make the parent forest or the
// dependency graph cyclic. The store is left unchanged.
type CycleError struct {
	SourceID string
	TargetID string
	Path     []string
}

func (e *CycleError) Error() string {
	msg := fmt.Sprintf("edge %s -> %s would create a cycle", e.SourceID, e.TargetID)
	if len(e.Path) > 0 {
		msg += ": " + strings.Join(e.Path, " -> ")
	}
	return msg
}

// InvalidTransitionError reports a status transition outside the legal
// transition table. The current status is unchanged.
type InvalidTransitionError struct {
	TaskID string
	From   TaskStatus
	To     TaskStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for task %s: %s -> %s", e.TaskID, e.From, e.To)
}
