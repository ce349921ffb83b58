package core

import (
	"strings"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Write the intro chapter", 40, "write-the-intro-chapter"},
		{"Fix bug #42 (again!)", 40, "fix-bug-42-again"},
		{"  spaced   out  ", 40, "spaced-out"},
		{"Ünïcode tïtle", 40, "n-code-t-tle"},
		{"A very long title that keeps going and going", 16, "a-very-long-titl"},
		{"???", 40, "task"},
		{"", 40, "task"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in, tt.max); got != tt.want {
			t.Fatalf("Slugify(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestNewTaskID(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	id := NewTaskID("Write summary", now, 40, nil)
	if id != "20260824-write-summary" {
		t.Fatalf("unexpected id: %s", id)
	}
}

func TestNewTaskID_Collision(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	taken := map[string]bool{"20260824-write-summary": true}

	id := NewTaskID("Write summary", now, 40, func(id string) bool { return taken[id] })
	if !strings.HasPrefix(id, "20260824-write-summary-") {
		t.Fatalf("collision suffix missing: %s", id)
	}
	if len(id) <= len("20260824-write-summary-") {
		t.Fatalf("empty suffix: %s", id)
	}
}
