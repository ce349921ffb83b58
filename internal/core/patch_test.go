package core

import (
	"testing"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

func TestParsePatch(t *testing.T) {
	p, err := ParsePatch([]string{
		"title=New title",
		"status=in_progress",
		"priority=p1",
		"deps=20260101-a, 20260102-b",
		"tags=writing,deep-work",
		"assignee=worker-a",
	})
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}

	if p.Title == nil || *p.Title != "New title" {
		t.Fatalf("title not parsed: %+v", p)
	}
	if p.Status == nil || *p.Status != models.StatusActive {
		t.Fatalf("status alias not normalized: %+v", p.Status)
	}
	if p.Priority == nil || *p.Priority != models.P1 {
		t.Fatalf("priority not uppercased: %+v", p.Priority)
	}
	if p.DependsOn == nil || len(*p.DependsOn) != 2 || (*p.DependsOn)[1] != "20260102-b" {
		t.Fatalf("deps list not parsed: %+v", p.DependsOn)
	}
	if p.Tags == nil || len(*p.Tags) != 2 {
		t.Fatalf("tags list not parsed: %+v", p.Tags)
	}
	if !p.Structural() {
		t.Fatal("deps edit must be structural")
	}
}

func TestParsePatch_ClearsFields(t *testing.T) {
	p, err := ParsePatch([]string{"parent=", "deps="})
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	if p.Parent == nil || *p.Parent != "" {
		t.Fatalf("empty parent should clear: %+v", p.Parent)
	}
	if p.DependsOn == nil || len(*p.DependsOn) != 0 {
		t.Fatalf("empty deps should clear: %+v", p.DependsOn)
	}
}

func TestParsePatch_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing equals", []string{"status"}},
		{"unknown field", []string{"owner=me"}},
		{"bad status", []string{"status=paused"}},
		{"bad priority", []string{"priority=P7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePatch(tt.args); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPatch_Empty(t *testing.T) {
	if !(Patch{}).Empty() {
		t.Fatal("zero patch must be empty")
	}
	title := "x"
	if (Patch{Title: &title}).Empty() {
		t.Fatal("patch with a field must not be empty")
	}
}
