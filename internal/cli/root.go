// Package cli implements the tg command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "tg",
	Short: "tg - personal task graph with dependency-aware scheduling",
	Long: `tg stores tasks as markdown files linked into a graph: a parent/child
hierarchy for decomposition and a depends_on relation for ordering.

It derives which tasks are ready to work on, keeps a rebuildable query
index, and coordinates concurrent workers through an atomic filesystem
claim protocol.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tg %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
