package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

var reopenTo string

var reopenCmd = &cobra.Command{
	Use:   "reopen <task-id>",
	Short: "Reopen a done or cancelled task",
	Long: `Move a terminal task back into play. The target defaults to active; pass
--to inbox to send it back for triage instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		to := models.NormalizeStatus(reopenTo)
		task, err := Tasks.Reopen(args[0], to)
		if err != nil {
			return fmt.Errorf("reopening task: %w", err)
		}

		fmt.Printf("Reopened %s as %s\n", task.ID, renderStatus(task.Status))
		return nil
	},
}

func init() {
	reopenCmd.Flags().StringVar(&reopenTo, "to", "active", "Status to reopen into (inbox or active)")
	rootCmd.AddCommand(reopenCmd)
}
