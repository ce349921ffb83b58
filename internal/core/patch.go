package core

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// Patch is a partial task update. Nil fields are left untouched; a non-nil
// pointer to a zero value clears the field where clearing is meaningful
// (parent, depends_on, assignee, tags, project).
type Patch struct {
	Title     *string
	Status    *models.TaskStatus
	Priority  *models.Priority
	Project   *string
	Parent    *string
	DependsOn *[]string
	Assignee  *string
	Tags      *[]string
	Body      *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Status == nil && p.Priority == nil &&
		p.Project == nil && p.Parent == nil && p.DependsOn == nil &&
		p.Assignee == nil && p.Tags == nil && p.Body == nil
}

// Structural reports whether the patch edits graph edges and therefore
// needs cycle validation under the structural lock.
func (p Patch) Structural() bool {
	return p.Parent != nil || p.DependsOn != nil
}

// ParsePatch builds a Patch from field=value arguments as given on the
// command line. depends_on and tags take comma-separated lists; an empty
// value clears the field. Status values accept the usual aliases.
func ParsePatch(args []string) (Patch, error) {
	var p Patch
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok {
			return Patch{}, fmt.Errorf("invalid update %q: expected field=value", arg)
		}

		switch field {
		case "title":
			p.Title = &value
		case "status":
			status := models.NormalizeStatus(value)
			if !models.ValidStatus(status) {
				return Patch{}, fmt.Errorf("invalid status %q", value)
			}
			p.Status = &status
		case "priority":
			priority := models.Priority(strings.ToUpper(value))
			if !models.ValidPriority(priority) {
				return Patch{}, fmt.Errorf("invalid priority %q", value)
			}
			p.Priority = &priority
		case "project":
			p.Project = &value
		case "parent":
			p.Parent = &value
		case "depends_on", "deps":
			deps := splitList(value)
			p.DependsOn = &deps
		case "assignee":
			p.Assignee = &value
		case "tags":
			tags := splitList(value)
			p.Tags = &tags
		case "body":
			p.Body = &value
		default:
			return Patch{}, fmt.Errorf("unknown field %q", field)
		}
	}
	return p, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
