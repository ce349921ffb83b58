package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

func (s *taskService) Decompose(parentID string, subtasks []Subtask, sequential bool) ([]*models.Task, error) {
	if len(subtasks) == 0 {
		return nil, &models.ValidationError{TaskID: parentID, Field: "subtasks", Reason: "must not be empty"}
	}

	var created []*models.Task
	err := withGraphLock(s.store.BasePath(), func() error {
		parent, err := s.store.Read(parentID)
		if err != nil {
			return err
		}
		if parent.Status.IsTerminal() {
			return fmt.Errorf("task %s is %s and cannot be decomposed", parentID, parent.Status)
		}

		tasks, err := s.store.ListAll()
		if err != nil {
			return err
		}

		// Build the full batch and validate every child before writing
		// anything. A failure anywhere leaves the store untouched.
		now := s.now().UTC().Truncate(time.Second)
		taken := make(map[string]bool)
		exists := func(id string) bool { return taken[id] || s.store.Exists(id) }

		batch := make([]*models.Task, 0, len(subtasks))
		for i, sub := range subtasks {
			if strings.TrimSpace(sub.Title) == "" {
				return &models.ValidationError{TaskID: parentID, Field: "subtasks", Reason: fmt.Sprintf("subtask %d has no title", i+1)}
			}
			taskType := sub.Type
			if taskType == "" {
				taskType = s.cfg.DefaultType
			}
			priority := sub.Priority
			if priority == "" {
				priority = parent.Priority
			}

			child := &models.Task{
				ID:       NewTaskID(sub.Title, now, s.cfg.SlugMax, exists),
				Title:    sub.Title,
				Type:     taskType,
				Status:   models.StatusInbox,
				Priority: priority,
				Project:  parent.Project,
				Parent:   parentID,
				Created:  now,
				Updated:  now,
				Body:     sub.Body,
			}
			taken[child.ID] = true
			if sequential && i > 0 {
				child.DependsOn = []string{batch[i-1].ID}
			}
			if err := child.Validate(); err != nil {
				return err
			}
			batch = append(batch, child)
		}

		candidate := append(append([]*models.Task{}, tasks...), batch...)
		for _, child := range batch {
			if err := s.validateEdges(candidate, child); err != nil {
				return err
			}
		}

		for _, child := range batch {
			if err := s.store.Create(child); err != nil {
				return err
			}
		}
		if _, err := s.index.Rebuild(candidate); err != nil {
			return err
		}
		created = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(created))
	for i, t := range created {
		ids[i] = t.ID
	}
	s.logEvent("task.decomposed", parentID, "", map[string]any{
		"subtasks":   ids,
		"sequential": sequential,
	})
	return created, nil
}
