package models

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// ToMarkdown renders the task as a markdown document with YAML frontmatter.
// This is the canonical on-disk form: metadata between --- delimiters, free
// text below.
func (t *Task) ToMarkdown() ([]byte, error) {
	fm, err := yaml.Marshal(t)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(frontmatterDelim + "\n")
	b.Write(fm)
	b.WriteString(frontmatterDelim + "\n")

	body := strings.TrimSpace(t.Body)
	if !strings.HasPrefix(body, "# ") {
		b.WriteString("\n# " + t.Title + "\n")
	}
	if body != "" {
		b.WriteString("\n" + body + "\n")
	}

	return []byte(b.String()), nil
}

// ParseTask parses a markdown document with YAML frontmatter into a Task.
// Status aliases are normalized before validation; any malformed metadata or
// unrecognized enum value fails with a ValidationError.
func ParseTask(content []byte) (*Task, error) {
	text := string(content)
	if !strings.HasPrefix(text, frontmatterDelim) {
		return nil, &ValidationError{Field: "frontmatter", Reason: "document must start with ---"}
	}

	parts := strings.SplitN(text, frontmatterDelim, 3)
	if len(parts) < 3 {
		return nil, &ValidationError{Field: "frontmatter", Reason: "unterminated frontmatter block"}
	}

	var task Task
	if err := yaml.Unmarshal([]byte(parts[1]), &task); err != nil {
		return nil, &ValidationError{Field: "frontmatter", Reason: "invalid YAML: " + err.Error()}
	}

	task.Status = NormalizeStatus(string(task.Status))
	task.Body = strings.TrimSpace(parts[2])

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return &task, nil
}
