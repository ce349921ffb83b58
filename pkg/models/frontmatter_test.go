package models

import (
	"errors"
	"strings"
	"testing"
)

func TestMarkdownRoundTrip(t *testing.T) {
	task := sampleTask("20260201-roundtrip")
	task.Parent = "20260101-root"
	task.DependsOn = []string{"20260102-dep"}
	task.Assignee = "worker-1"
	task.Tags = []string{"deep-work"}
	task.Body = "Some context.\n\n## Checklist\n\n- [ ] first\n- [x] second"

	data, err := task.ToMarkdown()
	if err != nil {
		t.Fatalf("ToMarkdown: %v", err)
	}

	parsed, err := ParseTask(data)
	if err != nil {
		t.Fatalf("ParseTask: %v", err)
	}

	if parsed.ID != task.ID || parsed.Title != task.Title {
		t.Fatalf("identity fields lost: %+v", parsed)
	}
	if parsed.Type != task.Type || parsed.Status != task.Status || parsed.Priority != task.Priority {
		t.Fatalf("enum fields lost: %+v", parsed)
	}
	if parsed.Parent != task.Parent || len(parsed.DependsOn) != 1 || parsed.DependsOn[0] != "20260102-dep" {
		t.Fatalf("graph fields lost: %+v", parsed)
	}
	if parsed.Assignee != "worker-1" {
		t.Fatalf("assignee lost: %q", parsed.Assignee)
	}
	if !parsed.Created.Equal(task.Created) || !parsed.Updated.Equal(task.Updated) {
		t.Fatalf("timestamps lost: created %v updated %v", parsed.Created, parsed.Updated)
	}
	if !strings.Contains(parsed.Body, "- [ ] first") {
		t.Fatalf("body lost: %q", parsed.Body)
	}
}

func TestToMarkdown_AddsTitleHeading(t *testing.T) {
	task := sampleTask("20260201-heading")
	task.Body = "no heading here"

	data, err := task.ToMarkdown()
	if err != nil {
		t.Fatalf("ToMarkdown: %v", err)
	}
	if !strings.Contains(string(data), "# "+task.Title) {
		t.Fatal("expected title heading in rendered document")
	}
}

func TestParseTask_StatusAlias(t *testing.T) {
	doc := `---
id: 20260201-alias
title: Alias test
type: task
status: in_progress
priority: P2
created: 2026-02-01T00:00:00Z
updated: 2026-02-01T00:00:00Z
---
body
`
	task, err := ParseTask([]byte(doc))
	if err != nil {
		t.Fatalf("ParseTask: %v", err)
	}
	if task.Status != StatusActive {
		t.Fatalf("expected alias in_progress -> active, got %q", task.Status)
	}
}

func TestParseTask_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no frontmatter", "# just a heading\n"},
		{"unterminated", "---\nid: x\n"},
		{"bad yaml", "---\nid: [unclosed\n---\n"},
		{"missing title", "---\nid: 20260201-x\ntype: task\nstatus: inbox\npriority: P2\n---\n"},
		{"bad status", "---\nid: 20260201-x\ntitle: T\ntype: task\nstatus: paused\npriority: P2\n---\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTask([]byte(tt.doc))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestChecklist(t *testing.T) {
	task := sampleTask("20260201-check")
	task.Body = "Intro.\n\n## Checklist\n\n- [ ] outline\n- [x] research\n- [ ] draft\n\n## Notes\n\n- [ ] outside the checklist section"

	items := task.Checklist()
	if len(items) != 3 {
		t.Fatalf("expected 3 checklist items, got %d: %+v", len(items), items)
	}
	if items[0].Text != "outline" || items[0].Done {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Text != "research" || !items[1].Done {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
}

func TestChecklist_NoSection(t *testing.T) {
	task := sampleTask("20260201-plain")
	task.Body = "- [ ] loose item\nplain text"

	items := task.Checklist()
	if len(items) != 1 || items[0].Text != "loose item" {
		t.Fatalf("expected loose item fallback, got %+v", items)
	}
}
