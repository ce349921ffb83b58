package models

import "strings"

// ChecklistItem is a single ordered sub-item within a task body.
type ChecklistItem struct {
	Text string
	Done bool
}

// Checklist extracts the ordered checklist from the task body. Items are
// `- [ ]` / `- [x]` lines; when a "## Checklist" heading is present, only
// that section is scanned, otherwise the whole body is.
func (t *Task) Checklist() []ChecklistItem {
	section := t.Body
	if idx := strings.Index(t.Body, "## Checklist"); idx >= 0 {
		section = t.Body[idx:]
		if end := strings.Index(section[1:], "\n## "); end >= 0 {
			section = section[:end+1]
		}
	}

	var items []ChecklistItem
	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "- [ ] "):
			items = append(items, ChecklistItem{Text: strings.TrimSpace(trimmed[6:])})
		case strings.HasPrefix(trimmed, "- [x] "), strings.HasPrefix(trimmed, "- [X] "):
			items = append(items, ChecklistItem{Text: strings.TrimSpace(trimmed[6:]), Done: true})
		}
	}
	return items
}
