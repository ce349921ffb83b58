package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		task, err := Tasks.Get(args[0])
		if err != nil {
			return fmt.Errorf("loading task: %w", err)
		}

		fmt.Println(headerStyle.Render(task.Title))
		fmt.Printf("%-10s %s\n", "id:", task.ID)
		fmt.Printf("%-10s %s\n", "type:", task.Type)
		fmt.Printf("%-10s %s\n", "status:", renderStatus(task.Status))
		fmt.Printf("%-10s %s\n", "priority:", renderPriority(task.Priority))
		if task.Project != "" {
			fmt.Printf("%-10s %s\n", "project:", task.Project)
		}
		if task.Parent != "" {
			fmt.Printf("%-10s %s\n", "parent:", task.Parent)
		}
		if len(task.DependsOn) > 0 {
			fmt.Printf("%-10s %s\n", "deps:", strings.Join(task.DependsOn, ", "))
		}
		if task.Assignee != "" {
			fmt.Printf("%-10s %s\n", "assignee:", task.Assignee)
		}
		if len(task.Tags) > 0 {
			fmt.Printf("%-10s %s\n", "tags:", strings.Join(task.Tags, ", "))
		}
		fmt.Printf("%-10s %s\n", "created:", task.Created.Format("2006-01-02 15:04"))
		fmt.Printf("%-10s %s\n", "updated:", task.Updated.Format("2006-01-02 15:04"))

		if items := task.Checklist(); len(items) > 0 {
			done := 0
			for _, item := range items {
				if item.Done {
					done++
				}
			}
			fmt.Printf("%-10s %d/%d\n", "checklist:", done, len(items))
			for _, item := range items {
				mark := "[ ]"
				if item.Done {
					mark = "[x]"
				}
				fmt.Printf("  %s %s\n", mark, item.Text)
			}
		}

		if body := strings.TrimSpace(task.Body); body != "" {
			fmt.Println()
			fmt.Println(body)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
