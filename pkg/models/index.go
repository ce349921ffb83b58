package models

// IndexEntry is a denormalized projection of a task's queryable fields plus
// the derived leaf and depth values. The index is a cache over the task
// store; it is never authoritative.
type IndexEntry struct {
	ID        string     `yaml:"id"`
	Title     string     `yaml:"title"`
	Status    TaskStatus `yaml:"status"`
	Priority  Priority   `yaml:"priority"`
	Project   string     `yaml:"project,omitempty"`
	Parent    string     `yaml:"parent,omitempty"`
	DependsOn []string   `yaml:"depends_on,omitempty"`
	Leaf      bool       `yaml:"leaf"`
	Depth     int        `yaml:"depth"`
}

// IndexFilter specifies criteria for querying index entries. All specified
// fields use AND logic: an entry must match every criterion.
type IndexFilter struct {
	Status   []TaskStatus
	Priority []Priority
	Project  string
	Parent   string
	LeafOnly bool
}

// Matches reports whether the entry satisfies every filter criterion.
func (f IndexFilter) Matches(e IndexEntry) bool {
	if len(f.Status) > 0 && !containsStatus(f.Status, e.Status) {
		return false
	}
	if len(f.Priority) > 0 && !containsPriority(f.Priority, e.Priority) {
		return false
	}
	if f.Project != "" && e.Project != f.Project {
		return false
	}
	if f.Parent != "" && e.Parent != f.Parent {
		return false
	}
	if f.LeafOnly && !e.Leaf {
		return false
	}
	return true
}

func containsStatus(haystack []TaskStatus, needle TaskStatus) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsPriority(haystack []Priority, needle Priority) bool {
	for _, p := range haystack {
		if p == needle {
			return true
		}
	}
	return false
}
