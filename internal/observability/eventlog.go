// Package observability records what happened to the task graph: an
// append-only JSONL event log plus metrics derived from it.
package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const eventLogFileName = ".tg_events.jsonl"

// Event types written by the task workflow. Reopen and reclaim are distinct
// types rather than status changes so the audit trail shows them as the
// exceptional operations they are.
const (
	EventTaskCreated   = "task.created"
	EventTaskUpdated   = "task.updated"
	EventStatusChanged = "task.status_changed"
	EventDecomposed    = "task.decomposed"
	EventClaimed       = "task.claimed"
	EventReleased      = "task.released"
	EventReclaimed     = "task.reclaimed"
	EventReopened      = "task.reopened"
	EventArchived      = "task.archived"
	EventIndexRebuilt  = "index.rebuilt"
)

// Event is a single record in the audit log.
type Event struct {
	Time   time.Time      `json:"time"`
	Type   string         `json:"type"`
	TaskID string         `json:"task_id,omitempty"`
	Actor  string         `json:"actor,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// EventFilter specifies criteria for reading events back.
type EventFilter struct {
	Since  *time.Time
	Until  *time.Time
	Type   string
	TaskID string
}

// EventLog defines the interface for writing and reading workflow events.
type EventLog interface {
	Append(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog over an append-only JSONL file.
type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewEventLog opens (creating if needed) the event log under basePath.
func NewEventLog(basePath string) (EventLog, error) {
	path := filepath.Join(basePath, eventLogFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{path: path, file: f}, nil
}

// Append writes a JSON-encoded event followed by a newline. A zero Time is
// stamped with the current time.
func (l *jsonlEventLog) Append(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Read scans the log line by line and returns the events matching the
// filter, in file order. Malformed lines are skipped.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}

		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

// Close closes the underlying log file.
func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && event.Time.After(*filter.Until) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.TaskID != "" && event.TaskID != filter.TaskID {
		return false
	}
	return true
}
