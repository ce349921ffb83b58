package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskgraph/internal/core"
	"github.com/valter-silva-au/taskgraph/pkg/models"
)

var treeCmd = &cobra.Command{
	Use:   "tree [root-id]",
	Short: "Render the task hierarchy",
	Long: `Render the subtree rooted at the given task, or the whole forest when no
root is given. Children sort by id, so siblings appear in creation order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		rootID := ""
		if len(args) == 1 {
			rootID = args[0]
		}
		root, err := Tasks.Tree(rootID)
		if err != nil {
			return fmt.Errorf("building tree: %w", err)
		}

		fmt.Print(renderTree(root))

		if rootID != "" {
			done, total := subtreeProgress(root)
			fmt.Printf("\nProgress: %d/%d done\n", done, total)

			ready, err := Tasks.Ready("")
			if err != nil {
				return fmt.Errorf("deriving ready tasks: %w", err)
			}
			ids := subtreeIDs(root, map[string]bool{})
			for _, t := range ready {
				if ids[t.ID] {
					fmt.Printf("Next: %s %s\n", t.ID, t.Title)
					break
				}
			}
		}
		return nil
	},
}

func subtreeProgress(node *core.TreeNode) (done, total int) {
	if node.Task != nil {
		total = 1
		if node.Task.Status == models.StatusDone {
			done = 1
		}
	}
	for _, child := range node.Children {
		d, t := subtreeProgress(child)
		done += d
		total += t
	}
	return done, total
}

func subtreeIDs(node *core.TreeNode, ids map[string]bool) map[string]bool {
	if node.Task != nil {
		ids[node.Task.ID] = true
	}
	for _, child := range node.Children {
		subtreeIDs(child, ids)
	}
	return ids
}

// renderTree formats a subtree with box-drawing connectors. A nil root task
// means a forest: its children render as top-level entries.
func renderTree(root *core.TreeNode) string {
	var b strings.Builder
	if root.Task != nil {
		b.WriteString(treeLabel(root) + "\n")
		renderChildren(&b, root, "")
		return b.String()
	}
	if len(root.Children) == 0 {
		return "No tasks.\n"
	}
	for i, child := range root.Children {
		b.WriteString(treeLabel(child) + "\n")
		renderChildren(&b, child, "")
		if i < len(root.Children)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderChildren(b *strings.Builder, node *core.TreeNode, prefix string) {
	for i, child := range node.Children {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(node.Children)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}
		b.WriteString(prefix + connector + treeLabel(child) + "\n")
		renderChildren(b, child, childPrefix)
	}
}

func treeLabel(node *core.TreeNode) string {
	t := node.Task
	mark := "[ ]"
	if t.Status == models.StatusDone {
		mark = "[x]"
	}
	label := fmt.Sprintf("%s %s %s (%s) [%s] %s",
		mark, idStyle.Render(t.ID), t.Title, t.Type, renderStatus(t.Status), renderPriority(t.Priority))
	if items := t.Checklist(); len(items) > 0 {
		checked := 0
		for _, item := range items {
			if item.Done {
				checked++
			}
		}
		label += helpStyle.Render(fmt.Sprintf(" %d/%d", checked, len(items)))
	}
	if len(t.DependsOn) > 0 {
		label += helpStyle.Render(fmt.Sprintf(" deps: %s", strings.Join(t.DependsOn, ", ")))
	}
	return label
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
