package cmd

import "github.com/spf13/cobra"

// runCmd is the explicit form of the root command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the server and the remote client once (same as the root command)",
	RunE:  runSupervised,
}
