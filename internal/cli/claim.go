package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	claimHolder    string
	claimProject   string
	claimPick      bool
	releaseDone    bool
	reclaimTimeout time.Duration
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim and release tasks",
	Long: `Coordinate concurrent workers through filesystem claim markers. A claim
is an exclusive-create of a marker file, so two workers racing for the
same task cannot both win.`,
}

var claimNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Claim the best ready task",
	Long: `Claim the highest-priority ready task for this holder. Tasks routed to
another assignee are skipped. Claiming promotes an inbox task to active
and records the holder as assignee.

With --pick an interactive list of ready tasks is shown instead of
taking the top one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}
		holder, err := resolveHolder()
		if err != nil {
			return err
		}

		if claimPick {
			return runClaimPicker(holder, claimProject)
		}

		task, ok, err := Tasks.ClaimNext(holder, claimProject)
		if err != nil {
			return fmt.Errorf("claiming task: %w", err)
		}
		if !ok {
			fmt.Println("Nothing claimable.")
			return nil
		}
		fmt.Printf("Claimed %s (%s) for %s\n", task.ID, task.Title, holder)
		return nil
	},
}

var claimReleaseCmd = &cobra.Command{
	Use:   "release <task-id>",
	Short: "Release a claimed task",
	Long: `Give up this holder's claim on a task. With --done the task is also
marked done, which can unblock tasks that depend on it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}
		holder, err := resolveHolder()
		if err != nil {
			return err
		}

		released, err := Tasks.Release(args[0], holder, releaseDone)
		if err != nil {
			return fmt.Errorf("releasing task: %w", err)
		}
		if !released {
			fmt.Printf("%s is not claimed by %s; nothing to release\n", args[0], holder)
			return nil
		}
		if releaseDone {
			fmt.Printf("Released %s as done\n", args[0])
		} else {
			fmt.Printf("Released %s\n", args[0])
		}
		return nil
	},
}

var claimReclaimCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Force-release stale claims",
	Long: `Remove claim markers older than the stale timeout. Covers workers that
crashed while holding a claim. --timeout overrides the configured value
for this run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		reclaimed, err := Tasks.ReclaimStale(reclaimTimeout)
		if err != nil {
			return fmt.Errorf("reclaiming stale claims: %w", err)
		}
		if len(reclaimed) == 0 {
			fmt.Println("No stale claims.")
			return nil
		}
		for _, id := range reclaimed {
			fmt.Printf("Reclaimed %s\n", id)
		}
		return nil
	},
}

var claimListCmd = &cobra.Command{
	Use:   "list",
	Short: "List live claims",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		claims, err := Tasks.Claims()
		if err != nil {
			return fmt.Errorf("listing claims: %w", err)
		}
		if len(claims) == 0 {
			fmt.Println("No live claims.")
			return nil
		}
		fmt.Printf("%-34s %-16s %s\n", "TASK", "HOLDER", "HELD FOR")
		for _, c := range claims {
			fmt.Printf("%-34s %-16s %s\n",
				c.TaskID, c.Holder, time.Since(c.Acquired).Round(time.Second))
		}
		return nil
	},
}

// resolveHolder picks the claim holder identity: the --holder flag, then
// TG_HOLDER, then the hostname.
func resolveHolder() (string, error) {
	if claimHolder != "" {
		return claimHolder, nil
	}
	if env := os.Getenv("TG_HOLDER"); env != "" {
		return env, nil
	}
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("resolving holder identity: %w", err)
	}
	return host, nil
}

func init() {
	claimCmd.PersistentFlags().StringVar(&claimHolder, "holder", "", "Holder identity (default: $TG_HOLDER or hostname)")
	claimNextCmd.Flags().StringVar(&claimProject, "project", "", "Restrict to a project")
	claimNextCmd.Flags().BoolVar(&claimPick, "pick", false, "Pick from the ready list interactively")
	claimReleaseCmd.Flags().BoolVar(&releaseDone, "done", false, "Mark the task done on release")
	claimReclaimCmd.Flags().DurationVar(&reclaimTimeout, "timeout", 0, "Stale threshold override (default: configured claims.stale_timeout)")
	claimCmd.AddCommand(claimNextCmd)
	claimCmd.AddCommand(claimReleaseCmd)
	claimCmd.AddCommand(claimReclaimCmd)
	claimCmd.AddCommand(claimListCmd)
	rootCmd.AddCommand(claimCmd)
}
