package core

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestSlugify_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		title := rapid.String().Draw(rt, "title")
		max := rapid.IntRange(8, 120).Draw(rt, "max")

		slug := Slugify(title, max)
		if slug == "" {
			rt.Fatal("slug must never be empty")
		}
		if slug != "task" && len(slug) > max {
			rt.Fatalf("slug %q exceeds max %d", slug, max)
		}
		if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
			rt.Fatalf("slug %q has edge hyphens", slug)
		}
		for _, r := range slug {
			valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
			if !valid {
				rt.Fatalf("slug %q contains invalid rune %q", slug, r)
			}
		}
	})
}

func TestNewTaskID_ChronologicalOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		daysA := rapid.IntRange(0, 1000).Draw(rt, "daysA")
		daysB := rapid.IntRange(0, 1000).Draw(rt, "daysB")
		if daysA >= daysB {
			return
		}

		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		earlier := NewTaskID("same title", base.AddDate(0, 0, daysA), 40, nil)
		later := NewTaskID("same title", base.AddDate(0, 0, daysB), 40, nil)
		if earlier >= later {
			rt.Fatalf("id order not chronological: %s >= %s", earlier, later)
		}
	})
}
