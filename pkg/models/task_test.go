package models

import (
	"errors"
	"testing"
	"time"
)

func sampleTask(id string) *Task {
	return &Task{
		ID:       id,
		Title:    "Test task " + id,
		Type:     TypeTask,
		Status:   StatusInbox,
		Priority: P2,
		Project:  "book",
		Created:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Updated:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidate_OK(t *testing.T) {
	task := sampleTask("20260201-test")
	if err := task.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Task)
		field  string
	}{
		{"empty id", func(task *Task) { task.ID = "" }, "id"},
		{"empty title", func(task *Task) { task.Title = "" }, "title"},
		{"unknown type", func(task *Task) { task.Type = "chore" }, "type"},
		{"unknown status", func(task *Task) { task.Status = "paused" }, "status"},
		{"unknown priority", func(task *Task) { task.Priority = "P9" }, "priority"},
		{"self dependency", func(task *Task) { task.DependsOn = []string{task.ID} }, "depends_on"},
		{"self parent", func(task *Task) { task.Parent = task.ID }, "parent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := sampleTask("20260201-test")
			tt.mutate(task)

			err := task.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestNormalizeStatus_Aliases(t *testing.T) {
	tests := []struct {
		in   string
		want TaskStatus
	}{
		{"todo", StatusInbox},
		{"open", StatusInbox},
		{"in_progress", StatusActive},
		{"in-progress", StatusActive},
		{"complete", StatusDone},
		{"completed", StatusDone},
		{"closed", StatusDone},
		{"active", StatusActive},
		{"nonsense", TaskStatus("nonsense")},
	}

	for _, tt := range tests {
		if got := NormalizeStatus(tt.in); got != tt.want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !StatusDone.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Fatal("done and cancelled must be terminal")
	}
	for _, s := range []TaskStatus{StatusInbox, StatusActive, StatusBlocked, StatusWaiting} {
		if s.IsTerminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}

func TestIndexFilter_Matches(t *testing.T) {
	entry := IndexEntry{
		ID:       "20260201-test",
		Status:   StatusActive,
		Priority: P1,
		Project:  "book",
		Parent:   "20260101-root",
		Leaf:     true,
	}

	tests := []struct {
		name   string
		filter IndexFilter
		want   bool
	}{
		{"empty filter", IndexFilter{}, true},
		{"status match", IndexFilter{Status: []TaskStatus{StatusActive}}, true},
		{"status miss", IndexFilter{Status: []TaskStatus{StatusDone}}, false},
		{"priority match", IndexFilter{Priority: []Priority{P0, P1}}, true},
		{"project miss", IndexFilter{Project: "thesis"}, false},
		{"parent match", IndexFilter{Parent: "20260101-root"}, true},
		{"leaf only", IndexFilter{LeafOnly: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(entry); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
