package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readyProject string

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Show tasks that are ready to work on",
	Long: `A task is ready when its status is inbox or active and every task it
depends on is done. Results sort by priority, then id, so the top entry
is always the best next pick.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		tasks, err := Tasks.Ready(readyProject)
		if err != nil {
			return fmt.Errorf("deriving ready tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Println("Nothing is ready.")
			return nil
		}

		fmt.Printf("%-34s %-10s %-4s %s\n", "ID", "STATUS", "PRI", "TITLE")
		for _, t := range tasks {
			title := t.Title
			if t.Assignee != "" {
				title = fmt.Sprintf("%s (routed to %s)", title, t.Assignee)
			}
			fmt.Printf("%-34s %-10s %-4s %s\n",
				t.ID, renderStatus(t.Status), renderPriority(t.Priority), title)
		}
		return nil
	},
}

func init() {
	readyCmd.Flags().StringVar(&readyProject, "project", "", "Restrict to a project")
	rootCmd.AddCommand(readyCmd)
}
