package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskgraph/internal/core"
)

var (
	decomposeTitles     []string
	decomposeSequential bool
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <parent-id> [-t <title>]... [<subtask-title>...]",
	Short: "Break a task into subtasks",
	Long: `Create child tasks under a parent in one atomic batch. Subtask titles
come from repeated -t flags or positional arguments. Children inherit
the parent's project and priority. With --sequential each child depends
on the previous one, so only the first is ready at a time.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		titles := append(decomposeTitles, args[1:]...)
		if len(titles) == 0 {
			return fmt.Errorf("at least one subtask title is required")
		}
		subtasks := make([]core.Subtask, 0, len(titles))
		for _, title := range titles {
			subtasks = append(subtasks, core.Subtask{Title: title})
		}
		created, err := Tasks.Decompose(args[0], subtasks, decomposeSequential)
		if err != nil {
			return fmt.Errorf("decomposing task: %w", err)
		}

		fmt.Printf("Created %d subtasks under %s:\n", len(created), args[0])
		for _, t := range created {
			fmt.Printf("  %s %s\n", idStyle.Render(t.ID), t.Title)
		}
		return nil
	},
}

func init() {
	decomposeCmd.Flags().StringArrayVarP(&decomposeTitles, "title", "t", nil, "Subtask title (repeatable)")
	decomposeCmd.Flags().BoolVar(&decomposeSequential, "sequential", false, "Chain subtasks so each depends on the previous")
	rootCmd.AddCommand(decomposeCmd)
}
