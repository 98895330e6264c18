package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "movewise",
	Short: "Inventory a machine's data before a peer-to-peer migration",
	Long: `Movewise inventories a machine's user data, installed applications and
configuration files ahead of a peer-to-peer migration. The scan adapts its
concurrency and batching to the host's hardware and tolerates partial
failures: inaccessible directories degrade to empty subtrees rather than
aborting the run.

Examples:
  movewise analyze                      # Inventory the home directory
  movewise analyze --root /data         # Inventory a specific tree
  movewise analyze -e ~/Downloads       # Exclude a directory
  movewise analyze --format json        # Emit the full inventory as JSON`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().String("log-file", "", "log file path (default: XDG state dir)")
}
