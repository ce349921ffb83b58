package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statsSince string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show workflow statistics",
	Long: `Aggregate the event log into workflow counters: tasks created, completed,
claimed, and so on. Use --since to limit the window, e.g. --since 7d.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("event log not available")
		}

		since := time.Time{}
		if statsSince != "" {
			d, err := parseSinceDuration(statsSince)
			if err != nil {
				return err
			}
			since = time.Now().Add(-d)
		}

		m, err := MetricsCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("calculating stats: %w", err)
		}

		fmt.Println(headerStyle.Render("Workflow stats"))
		fmt.Printf("%-18s %d\n", "created:", m.TasksCreated)
		fmt.Printf("%-18s %d\n", "completed:", m.TasksCompleted)
		fmt.Printf("%-18s %d\n", "claimed:", m.TasksClaimed)
		fmt.Printf("%-18s %d\n", "released:", m.TasksReleased)
		fmt.Printf("%-18s %d\n", "reclaimed:", m.TasksReclaimed)
		fmt.Printf("%-18s %d\n", "reopened:", m.TasksReopened)
		fmt.Printf("%-18s %d\n", "archived:", m.TasksArchived)
		fmt.Printf("%-18s %d\n", "decompositions:", m.Decompositions)
		fmt.Printf("%-18s %d\n", "index rebuilds:", m.IndexRebuilds)
		fmt.Printf("%-18s %d\n", "events:", m.EventCount)

		if len(m.TasksByType) > 0 {
			fmt.Println("\nCreated by type:")
			for _, k := range sortedKeys(m.TasksByType) {
				fmt.Printf("  %-10s %d\n", k+":", m.TasksByType[k])
			}
		}
		if len(m.StatusChanges) > 0 {
			fmt.Println("\nStatus changes:")
			for _, k := range sortedKeys(m.StatusChanges) {
				fmt.Printf("  %-10s %d\n", k+":", m.StatusChanges[k])
			}
		}
		if m.OldestEvent != nil && m.NewestEvent != nil {
			fmt.Printf("\nWindow: %s to %s\n",
				m.OldestEvent.Format("2006-01-02 15:04"),
				m.NewestEvent.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

// parseSinceDuration accepts Go durations plus a day suffix, e.g. 7d.
func parseSinceDuration(s string) (time.Duration, error) {
	if n := len(s); n > 1 && s[n-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s[:n-1], "%d", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --since value %q (use 24h, 7d, ...)", s)
	}
	return d, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	statsCmd.Flags().StringVar(&statsSince, "since", "", "Only count events newer than this (e.g. 24h, 7d)")
	rootCmd.AddCommand(statsCmd)
}
