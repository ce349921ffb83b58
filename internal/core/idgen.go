package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const idDateLayout = "20060102"

// Slugify lowercases the title and reduces it to hyphen-separated
// alphanumeric runs, capped at max characters. A title with no usable
// characters slugs to "task".
func Slugify(title string, max int) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > max {
		slug = strings.Trim(slug[:max], "-")
	}
	if slug == "" {
		return "task"
	}
	return slug
}

// NewTaskID builds a date-prefixed id, YYYYMMDD-slug, so lexicographic
// order is chronological. When the id already exists a short random suffix
// disambiguates.
func NewTaskID(title string, now time.Time, slugMax int, exists func(string) bool) string {
	id := now.UTC().Format(idDateLayout) + "-" + Slugify(title, slugMax)
	if exists == nil || !exists(id) {
		return id
	}
	for {
		candidate := id + "-" + uuid.NewString()[:8]
		if !exists(candidate) {
			return candidate
		}
	}
}
