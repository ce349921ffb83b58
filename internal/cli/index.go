package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the query index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index from the task store",
	Long: `Regenerate the index from scratch by scanning every task document. The
index is pure cache, so rebuilding is always safe; rebuilding an
unchanged store produces a byte-identical file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		entries, err := Tasks.RebuildIndex()
		if err != nil {
			return fmt.Errorf("rebuilding index: %w", err)
		}
		fmt.Printf("Rebuilt index with %d tasks\n", len(entries))
		return nil
	},
}

func init() {
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}
