package core

import (
	"github.com/valter-silva-au/taskgraph/internal/graph"
	"github.com/valter-silva-au/taskgraph/pkg/models"
)

func (s *taskService) Update(id string, patch Patch) (*models.Task, error) {
	if patch.Empty() {
		return s.store.Read(id)
	}

	var (
		task       *models.Task
		fromStatus models.TaskStatus
	)
	apply := func(t *models.Task) error {
		fromStatus = t.Status
		if patch.Status != nil {
			if err := ValidateTransition(t.ID, t.Status, *patch.Status); err != nil {
				return err
			}
			t.Status = *patch.Status
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.Project != nil {
			t.Project = *patch.Project
		}
		if patch.Parent != nil {
			t.Parent = *patch.Parent
		}
		if patch.DependsOn != nil {
			t.DependsOn = *patch.DependsOn
		}
		if patch.Assignee != nil {
			t.Assignee = *patch.Assignee
		}
		if patch.Tags != nil {
			t.Tags = *patch.Tags
		}
		if patch.Body != nil {
			t.Body = *patch.Body
		}
		return t.Validate()
	}

	var err error
	if patch.Structural() {
		// Edge edits validate against a stable graph, so the whole
		// read-validate-write sequence holds the structural lock.
		err = withGraphLock(s.store.BasePath(), func() error {
			tasks, listErr := s.store.ListAll()
			if listErr != nil {
				return listErr
			}
			for _, t := range tasks {
				if t.ID == id {
					task = t
					break
				}
			}
			if task == nil {
				_, readErr := s.store.Read(id)
				return readErr
			}
			if applyErr := apply(task); applyErr != nil {
				return applyErr
			}
			if validateErr := s.validateEdges(tasks, task); validateErr != nil {
				return validateErr
			}
			return s.store.Write(task)
		})
	} else {
		task, err = s.store.Update(id, apply)
	}
	if err != nil {
		return nil, err
	}
	if err := s.updateIndex(task); err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status != fromStatus {
		s.logEvent("task.status_changed", id, "", map[string]any{
			"from": string(fromStatus),
			"to":   string(*patch.Status),
		})
		if *patch.Status == models.StatusDone {
			if err := s.promoteDependents(id); err != nil {
				return nil, err
			}
		}
	} else {
		s.logEvent("task.updated", id, "", nil)
	}
	return task, nil
}

// promoteDependents re-evaluates tasks that depend on the task just marked
// done and moves any blocked dependent whose dependencies are now all done
// back to active. Completion triggers this synchronously rather than a
// poller.
func (s *taskService) promoteDependents(doneID string) error {
	tasks, err := s.store.ListAll()
	if err != nil {
		return err
	}
	g := graph.FromTasks(tasks, graph.Options{ParentsReady: s.cfg.ParentsReady})

	for _, depID := range g.DependentsOf(doneID) {
		node := g.Node(depID)
		if node == nil || node.Status != models.StatusBlocked {
			continue
		}
		if !dependenciesDone(g, node) {
			continue
		}

		updated, err := s.store.Update(depID, func(t *models.Task) error {
			if t.Status != models.StatusBlocked {
				return nil
			}
			t.Status = models.StatusActive
			return nil
		})
		if err != nil {
			return err
		}
		if err := s.updateIndex(updated); err != nil {
			return err
		}
		s.logEvent("task.status_changed", depID, "", map[string]any{
			"from":    string(models.StatusBlocked),
			"to":      string(models.StatusActive),
			"trigger": doneID,
		})
	}
	return nil
}

func dependenciesDone(g *graph.Graph, n *graph.Node) bool {
	for _, dep := range n.DependsOn {
		depNode := g.Node(dep)
		if depNode == nil || depNode.Status != models.StatusDone {
			return false
		}
	}
	return true
}
