package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pirun",
	Short: "Start the local server, wait for it, and run the client on the Pi",
	Long: "Launches the local server in the background, waits until its TCP port accepts connections, " +
		"runs the client on the Raspberry Pi over SSH, and stops the server on every exit path.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := initLogger(cmd.ErrOrStderr(), cfgLogLevel, cfgLogJSON)
		return err
	},
	RunE: runSupervised,
}

// runSupervised resolves configuration and performs one supervised run.
// SIGINT and SIGTERM cancel the run; the server is still stopped before
// this returns.
func runSupervised(cmd *cobra.Command, args []string) error {
	cfg, err := resolveRunConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if cfgNoop {
		return printPlan(cmd.OutOrStdout(), cfg)
	}

	runID := uuid.NewString()
	log.Logger = log.With().Str("run", runID).Logger()

	cfg.Server.Stdout = cmd.OutOrStdout()
	cfg.Server.Stderr = cmd.ErrOrStderr()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := newRunReport(cfg, runID)
	runErr := supervise(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), rep)
	rep.finish(runErr)
	log.Info().Str("outcome", string(rep.Outcome)).Int("exit_code", rep.ExitCode).Msg("run finished")

	if cfg.ReportPath != "" {
		if err := writeReportFile(cfg.ReportPath, rep); err != nil {
			log.Error().Err(err).Str("path", cfg.ReportPath).Msg("failed to write report")
			if runErr == nil {
				return err
			}
			return multierror.Append(runErr, err)
		}
		log.Info().Str("path", cfg.ReportPath).Msg("report written")
	}
	return runErr
}
