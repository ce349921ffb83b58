package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

func (s *taskService) ClaimNext(holder, project string) (*models.Task, bool, error) {
	if holder == "" {
		return nil, false, &models.ValidationError{Field: "holder", Reason: "must not be empty"}
	}

	candidates, err := s.Ready(project)
	if err != nil {
		return nil, false, err
	}

	for _, candidate := range candidates {
		// Tasks routed to a specific worker are invisible to everyone else.
		if candidate.Assignee != "" && candidate.Assignee != holder {
			continue
		}

		won, err := s.claims.Claim(candidate.ID, holder)
		if err != nil {
			return nil, false, err
		}
		if !won {
			continue
		}

		// The candidate list is a snapshot; another worker may have
		// mutated the task between the scan and the claim. Re-read and
		// re-verify before committing to it.
		task, err := s.verifyAndActivate(candidate.ID, holder)
		if err != nil {
			if _, relErr := s.claims.Release(candidate.ID, holder); relErr != nil {
				return nil, false, fmt.Errorf("%w (and releasing the claim failed: %v)", err, relErr)
			}
			return nil, false, err
		}
		if task == nil {
			if _, err := s.claims.Release(candidate.ID, holder); err != nil {
				return nil, false, err
			}
			continue
		}

		s.logEvent("task.claimed", task.ID, holder, nil)
		return task, true, nil
	}
	return nil, false, nil
}

// verifyAndActivate re-reads the claimed task from the store, confirms it
// is still ready, and promotes it to active with the holder as assignee.
// A nil task with nil error means the task is no longer claimable.
func (s *taskService) verifyAndActivate(id, holder string) (*models.Task, error) {
	g, err := s.loadGraph()
	if err != nil {
		return nil, err
	}
	if !g.Ready(id) {
		return nil, nil
	}
	node := g.Node(id)
	if node.Task.Assignee != "" && node.Task.Assignee != holder {
		return nil, nil
	}

	task, err := s.store.Update(id, func(t *models.Task) error {
		if t.Status == models.StatusInbox {
			t.Status = models.StatusActive
		}
		t.Assignee = holder
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.updateIndex(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) ClaimTask(taskID, holder string) (*models.Task, bool, error) {
	if holder == "" {
		return nil, false, &models.ValidationError{Field: "holder", Reason: "must not be empty"}
	}

	won, err := s.claims.Claim(taskID, holder)
	if err != nil {
		return nil, false, err
	}
	if !won {
		return nil, false, nil
	}

	task, err := s.verifyAndActivate(taskID, holder)
	if err != nil {
		if _, relErr := s.claims.Release(taskID, holder); relErr != nil {
			return nil, false, fmt.Errorf("%w (and releasing the claim failed: %v)", err, relErr)
		}
		return nil, false, err
	}
	if task == nil {
		if _, err := s.claims.Release(taskID, holder); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	s.logEvent("task.claimed", task.ID, holder, nil)
	return task, true, nil
}

func (s *taskService) Release(taskID, holder string, done bool) (bool, error) {
	released, err := s.claims.Release(taskID, holder)
	if err != nil {
		return false, err
	}
	if !released {
		return false, nil
	}
	s.logEvent("task.released", taskID, holder, map[string]any{"done": done})

	if done {
		status := models.StatusDone
		if _, err := s.Update(taskID, Patch{Status: &status}); err != nil {
			return true, err
		}
		return true, nil
	}

	// The claim stamped holder as assignee; clear it so the task goes
	// back into the shared pool instead of staying routed to holder.
	if err := s.clearAssignee(taskID, holder); err != nil {
		return true, err
	}
	return true, nil
}

func (s *taskService) ReclaimStale(timeout time.Duration) ([]string, error) {
	if timeout <= 0 {
		timeout = s.cfg.StaleTimeout
	}
	reclaimed, err := s.claims.ReclaimStale(timeout)
	if err != nil {
		return nil, err
	}
	for _, id := range reclaimed {
		// Drop the crashed holder's assignee stamp, otherwise the routing
		// filter hides the task from every other worker.
		if err := s.clearAssignee(id, ""); err != nil {
			return reclaimed, err
		}
		s.logEvent("task.reclaimed", id, "", map[string]any{
			"timeout": timeout.String(),
		})
	}
	return reclaimed, nil
}

// clearAssignee removes the task's assignee. With holder set, only a stamp
// matching that holder is cleared, so routing chosen by a person survives a
// release by someone else. A missing task is not an error; a claim can
// outlive its document.
func (s *taskService) clearAssignee(taskID, holder string) error {
	task, err := s.store.Update(taskID, func(t *models.Task) error {
		if holder == "" || t.Assignee == holder {
			t.Assignee = ""
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrTaskNotFound) {
			return nil
		}
		return err
	}
	return s.updateIndex(task)
}

func (s *taskService) Claims() ([]models.ClaimMarker, error) {
	return s.claims.List()
}
