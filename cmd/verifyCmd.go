package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate flags, environment and profile without running",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := resolveRunConfig(cmd.Flags()); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Config OK")
		return nil
	},
}
