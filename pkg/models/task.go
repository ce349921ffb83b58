// Package models defines the task graph data model: tasks, index entries,
// claim markers, and the typed errors shared across the system.
package models

import "time"

// TaskType is a hierarchy-level tag for decomposition, not a behavioral type.
type TaskType string

const (
	TypeGoal    TaskType = "goal"
	TypeProject TaskType = "project"
	TypeEpic    TaskType = "epic"
	TypeTask    TaskType = "task"
	TypeAction  TaskType = "action"
)

// TaskStatus represents the current lifecycle state of a task.
type TaskStatus string

const (
	StatusInbox     TaskStatus = "inbox"
	StatusActive    TaskStatus = "active"
	StatusBlocked   TaskStatus = "blocked"
	StatusWaiting   TaskStatus = "waiting"
	StatusDone      TaskStatus = "done"
	StatusCancelled TaskStatus = "cancelled"
)

// Priority represents the urgency level of a task.
type Priority string

const (
	P0 Priority = "P0"
	P1 Priority = "P1"
	P2 Priority = "P2"
	P3 Priority = "P3"
)

// Task is the canonical task record. The frontmatter-tagged fields are
// persisted in the document header; Body holds the free-text markdown below
// it. Leaf, depth, and readiness are derived from graph state and never
// stored.
type Task struct {
	ID        string     `yaml:"id"`
	Title     string     `yaml:"title"`
	Type      TaskType   `yaml:"type"`
	Status    TaskStatus `yaml:"status"`
	Priority  Priority   `yaml:"priority"`
	Project   string     `yaml:"project,omitempty"`
	Parent    string     `yaml:"parent,omitempty"`
	DependsOn []string   `yaml:"depends_on,omitempty"`
	Assignee  string     `yaml:"assignee,omitempty"`
	Tags      []string   `yaml:"tags,omitempty"`
	Created   time.Time  `yaml:"created"`
	Updated   time.Time  `yaml:"updated"`

	Body string `yaml:"-"`
}

// statusAliases maps legacy status spellings to canonical values. Applied
// when parsing documents so hand-edited files keep loading.
var statusAliases = map[string]TaskStatus{
	"todo":        StatusInbox,
	"open":        StatusInbox,
	"in_progress": StatusActive,
	"in-progress": StatusActive,
	"complete":    StatusDone,
	"completed":   StatusDone,
	"closed":      StatusDone,
}

// validTypes is the closed set of recognized task types.
var validTypes = map[TaskType]bool{
	TypeGoal:    true,
	TypeProject: true,
	TypeEpic:    true,
	TypeTask:    true,
	TypeAction:  true,
}

// validStatuses is the closed set of recognized task statuses.
var validStatuses = map[TaskStatus]bool{
	StatusInbox:     true,
	StatusActive:    true,
	StatusBlocked:   true,
	StatusWaiting:   true,
	StatusDone:      true,
	StatusCancelled: true,
}

// validPriorities is the closed set of allowed Priority values.
var validPriorities = map[Priority]bool{
	P0: true,
	P1: true,
	P2: true,
	P3: true,
}

// ValidType reports whether t is a recognized task type.
func ValidType(t TaskType) bool { return validTypes[t] }

// ValidStatus reports whether s is a recognized task status.
func ValidStatus(s TaskStatus) bool { return validStatuses[s] }

// ValidPriority reports whether p is a recognized priority.
func ValidPriority(p Priority) bool { return validPriorities[p] }

// NormalizeStatus resolves status aliases to canonical values. Unknown
// values pass through unchanged so validation can reject them.
func NormalizeStatus(s string) TaskStatus {
	if canonical, ok := statusAliases[s]; ok {
		return canonical
	}
	return TaskStatus(s)
}

// IsTerminal reports whether the status is terminal. Terminal tasks accept
// no further transitions without an explicit reopen.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Validate checks the task's required fields and enum values.
func (t *Task) Validate() error {
	if t.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if t.Title == "" {
		return &ValidationError{TaskID: t.ID, Field: "title", Reason: "must not be empty"}
	}
	if !ValidType(t.Type) {
		return &ValidationError{TaskID: t.ID, Field: "type", Reason: "unknown value " + string(t.Type)}
	}
	if !ValidStatus(t.Status) {
		return &ValidationError{TaskID: t.ID, Field: "status", Reason: "unknown value " + string(t.Status)}
	}
	if !ValidPriority(t.Priority) {
		return &ValidationError{TaskID: t.ID, Field: "priority", Reason: "unknown value " + string(t.Priority)}
	}
	for _, dep := range t.DependsOn {
		if dep == t.ID {
			return &ValidationError{TaskID: t.ID, Field: "depends_on", Reason: "task cannot depend on itself"}
		}
	}
	if t.Parent != "" && t.Parent == t.ID {
		return &ValidationError{TaskID: t.ID, Field: "parent", Reason: "task cannot be its own parent"}
	}
	return nil
}

// DependsOnSet returns the dependency ids as a set for membership checks.
func (t *Task) DependsOnSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.DependsOn))
	for _, dep := range t.DependsOn {
		set[dep] = struct{}{}
	}
	return set
}
