package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <task-id>",
	Short: "Archive a task",
	Long: `Move a task's document into the archive directory and drop it from the
index. Archived tasks leave the graph but the markdown file is kept.
A task under an active claim cannot be archived.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		if err := Tasks.Archive(args[0]); err != nil {
			return fmt.Errorf("archiving task: %w", err)
		}
		fmt.Printf("Archived %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}
