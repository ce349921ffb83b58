package models

import "time"

// ClaimMarker records an exclusive, time-bounded assertion that a worker is
// handling a task. Markers live outside the task store and the index; their
// existence alone signals "claimed".
type ClaimMarker struct {
	TaskID   string    `yaml:"-"`
	Holder   string    `yaml:"holder"`
	Acquired time.Time `yaml:"acquired"`
}

// Stale reports whether the marker is older than the given timeout, i.e. the
// holder is presumed to have crashed without releasing.
func (m ClaimMarker) Stale(timeout time.Duration, now time.Time) bool {
	return now.Sub(m.Acquired) > timeout
}
