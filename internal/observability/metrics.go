package observability

import (
	"fmt"
	"time"
)

// Metrics holds workflow counters derived from the event log.
type Metrics struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksClaimed   int            `json:"tasks_claimed"`
	TasksReleased  int            `json:"tasks_released"`
	TasksReclaimed int            `json:"tasks_reclaimed"`
	TasksReopened  int            `json:"tasks_reopened"`
	TasksArchived  int            `json:"tasks_archived"`
	Decompositions int            `json:"decompositions"`
	IndexRebuilds  int            `json:"index_rebuilds"`
	TasksByType    map[string]int `json:"tasks_by_type"`
	StatusChanges  map[string]int `json:"status_changes"`
	EventCount     int            `json:"event_count"`
	OldestEvent    *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from the given
// EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
// A completion is a status change landing on done.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		TasksByType:   make(map[string]int),
		StatusChanges: make(map[string]int),
	}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventTaskCreated:
			m.TasksCreated++
			if taskType, ok := event.Data["type"].(string); ok {
				m.TasksByType[taskType]++
			}
		case EventStatusChanged:
			if to, ok := event.Data["to"].(string); ok {
				m.StatusChanges[to]++
				if to == "done" {
					m.TasksCompleted++
				}
			}
		case EventClaimed:
			m.TasksClaimed++
		case EventReleased:
			m.TasksReleased++
		case EventReclaimed:
			m.TasksReclaimed++
		case EventReopened:
			m.TasksReopened++
		case EventArchived:
			m.TasksArchived++
		case EventDecomposed:
			m.Decompositions++
		case EventIndexRebuilt:
			m.IndexRebuilds++
		}
	}

	return m, nil
}
