package core

import (
	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// allowedTransitions is the status state machine. Done and cancelled have
// no outgoing edges; leaving a terminal status goes through Reopen, which
// is a distinct operation rather than a transition.
var allowedTransitions = map[models.TaskStatus][]models.TaskStatus{
	models.StatusInbox:   {models.StatusActive},
	models.StatusActive:  {models.StatusBlocked, models.StatusWaiting, models.StatusDone, models.StatusCancelled},
	models.StatusBlocked: {models.StatusActive},
	models.StatusWaiting: {models.StatusActive},
}

// ValidateTransition checks that moving the task from its current status to
// the target is a legal edge of the state machine. A no-op transition to
// the current status is always allowed.
func ValidateTransition(taskID string, from, to models.TaskStatus) error {
	if from == to {
		return nil
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &models.InvalidTransitionError{TaskID: taskID, From: from, To: to}
}
