package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// planCmd prints what a run would do without starting anything.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the resolved run plan without executing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveRunConfig(cmd.Flags())
		if err != nil {
			return err
		}
		return printPlan(cmd.OutOrStdout(), cfg)
	},
}

// printPlan writes the launch argv, probe target and exact remote command.
func printPlan(w io.Writer, cfg runConfig) error {
	bw := bufio.NewWriter(w)
	if cfg.Name != "" {
		_, _ = fmt.Fprintf(bw, "# %s\n", cfg.Name)
	}
	dir := cfg.Server.Dir
	if dir == "" {
		dir = "."
	}
	_, _ = fmt.Fprintf(bw, "server:  %s (dir %s)\n", shellJoin(cfg.Server.Argv), dir)
	if cfg.Server.LogPath != "" {
		_, _ = fmt.Fprintf(bw, "log:     %s\n", cfg.Server.LogPath)
	}
	timeout := "none"
	if cfg.Probe.Timeout > 0 {
		timeout = cfg.Probe.Timeout.String()
	}
	_, _ = fmt.Fprintf(bw, "probe:   tcp %s every %s, timeout %s\n", cfg.Endpoint.Addr(), cfg.Probe.Interval, timeout)
	_, _ = fmt.Fprintf(bw, "remote:  %s\n", cfg.Remote)
	_, _ = fmt.Fprintf(bw, "command: %s\n", buildRemoteCommand(cfg.Remote))
	_, _ = fmt.Fprintf(bw, "stop:    SIGTERM, SIGKILL after %s\n", cfg.StopTimeout)
	return bw.Flush()
}
