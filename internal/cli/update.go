package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskgraph/internal/core"
)

var updateCmd = &cobra.Command{
	Use:   "update <task-id> <field>=<value>...",
	Short: "Update task fields",
	Long: `Update one or more fields on a task, given as field=value pairs.

Fields: title, status, priority, project, parent, depends_on (comma
separated, alias deps), assignee, tags, body. An empty value clears the
field. Status changes go through the transition rules; parent and
dependency edits are validated against the graph.

Examples:
  tg update 20260824-draft-intro status=active
  tg update 20260824-draft-intro priority=P1 assignee=worker-a
  tg update 20260824-draft-intro deps=20260820-outline,20260821-research
  tg update 20260824-draft-intro parent=`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		patch, err := core.ParsePatch(args[1:])
		if err != nil {
			return err
		}
		task, err := Tasks.Update(args[0], patch)
		if err != nil {
			return fmt.Errorf("updating task: %w", err)
		}

		fmt.Printf("Updated %s (%s, %s)\n", task.ID, renderStatus(task.Status), task.Priority)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
