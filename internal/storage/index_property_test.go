package storage

import (
	"fmt"
	"os"
	"testing"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// Rebuilding from the same store state is deterministic for arbitrary
// forests, not just the handcrafted fixture.
func TestRebuild_ByteIdenticalProperty(t *testing.T) {
	statuses := []models.TaskStatus{
		models.StatusInbox, models.StatusActive, models.StatusBlocked,
		models.StatusWaiting, models.StatusDone, models.StatusCancelled,
	}
	priorities := []models.Priority{models.P0, models.P1, models.P2, models.P3}

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 15).Draw(rt, "tasks")

		tasks := make([]*models.Task, n)
		for i := range tasks {
			task := storeTask(fmt.Sprintf("20260101-t%02d", i))
			task.Status = statuses[rapid.IntRange(0, len(statuses)-1).Draw(rt, "status")]
			task.Priority = priorities[rapid.IntRange(0, len(priorities)-1).Draw(rt, "priority")]
			// Parent and dependency edges only point backwards, keeping
			// the generated graph acyclic.
			if i > 0 && rapid.Bool().Draw(rt, "hasParent") {
				task.Parent = tasks[rapid.IntRange(0, i-1).Draw(rt, "parent")].ID
			}
			for j := 0; j < i; j++ {
				if rapid.Bool().Draw(rt, "dep") {
					task.DependsOn = append(task.DependsOn, tasks[j].ID)
				}
			}
			tasks[i] = task
		}

		m := NewIndexManager(t.TempDir())
		if _, err := m.Rebuild(tasks); err != nil {
			rt.Fatalf("first Rebuild: %v", err)
		}
		first, err := os.ReadFile(m.Path())
		if err != nil {
			rt.Fatalf("ReadFile: %v", err)
		}

		if _, err := m.Rebuild(tasks); err != nil {
			rt.Fatalf("second Rebuild: %v", err)
		}
		second, err := os.ReadFile(m.Path())
		if err != nil {
			rt.Fatalf("ReadFile: %v", err)
		}

		if string(first) != string(second) {
			rt.Fatalf("rebuild not deterministic:\n%s\n---\n%s", first, second)
		}
	})
}
