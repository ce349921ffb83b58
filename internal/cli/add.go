package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskgraph/internal/core"
	"github.com/valter-silva-au/taskgraph/pkg/models"
)

var (
	addType     string
	addPriority string
	addProject  string
	addParent   string
	addDeps     []string
	addAssignee string
	addTags     []string
	addBody     string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Long: `Create a task in the inbox. The id is derived from today's date and the
title, so ids sort chronologically.

Parent and dependency references are validated before the task is
written; an edge that would create a cycle is rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		task, err := Tasks.Add(core.AddOptions{
			Title:     strings.Join(args, " "),
			Type:      models.TaskType(addType),
			Priority:  models.Priority(strings.ToUpper(addPriority)),
			Project:   addProject,
			Parent:    addParent,
			DependsOn: addDeps,
			Assignee:  addAssignee,
			Tags:      addTags,
			Body:      addBody,
		})
		if err != nil {
			return fmt.Errorf("adding task: %w", err)
		}

		fmt.Printf("Created %s (%s, %s)\n", task.ID, task.Type, task.Priority)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addType, "type", "", "Task type (goal, project, epic, task, action)")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority (P0-P3)")
	addCmd.Flags().StringVar(&addProject, "project", "", "Project the task belongs to")
	addCmd.Flags().StringVar(&addParent, "parent", "", "Parent task id")
	addCmd.Flags().StringSliceVar(&addDeps, "deps", nil, "Ids of tasks this task depends on")
	addCmd.Flags().StringVar(&addAssignee, "assignee", "", "Worker the task is routed to")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "Tags")
	addCmd.Flags().StringVar(&addBody, "body", "", "Markdown body")
	rootCmd.AddCommand(addCmd)
}
