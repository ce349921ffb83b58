package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

var (
	listStatus   []string
	listPriority []string
	listProject  string
	listParent   string
	listLeaves   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks from the index",
	Long: `List tasks using the query index. Filters combine with AND logic.

The index is a cache over the task store; if it is missing it is rebuilt
transparently before the query runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		filter := models.IndexFilter{
			Project:  listProject,
			Parent:   listParent,
			LeafOnly: listLeaves,
		}
		for _, s := range listStatus {
			status := models.NormalizeStatus(s)
			if !models.ValidStatus(status) {
				return fmt.Errorf("invalid status %q", s)
			}
			filter.Status = append(filter.Status, status)
		}
		for _, p := range listPriority {
			priority := models.Priority(strings.ToUpper(p))
			if !models.ValidPriority(priority) {
				return fmt.Errorf("invalid priority %q", p)
			}
			filter.Priority = append(filter.Priority, priority)
		}

		entries, err := Tasks.List(filter)
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No tasks match.")
			return nil
		}

		fmt.Printf("%-34s %-10s %-4s %-12s %s\n", "ID", "STATUS", "PRI", "PROJECT", "TITLE")
		for _, e := range entries {
			fmt.Printf("%-34s %-10s %-4s %-12s %s\n",
				e.ID, renderStatus(e.Status), renderPriority(e.Priority), e.Project, e.Title)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringSliceVarP(&listStatus, "status", "s", nil, "Filter by status (repeatable)")
	listCmd.Flags().StringSliceVarP(&listPriority, "priority", "p", nil, "Filter by priority (repeatable)")
	listCmd.Flags().StringVar(&listProject, "project", "", "Filter by project")
	listCmd.Flags().StringVar(&listParent, "parent", "", "Filter by parent task id")
	listCmd.Flags().BoolVar(&listLeaves, "leaves", false, "Only tasks without children")
	rootCmd.AddCommand(listCmd)
}
