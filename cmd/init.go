package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// init declares the persistent flags shared by every subcommand, binds them
// to PIRUN_* environment variables via Viper, and registers subcommands.
func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&cfgProfile, "profile", "p", "", "Path to YAML run profile (flags and env override it)")

	// Remote side
	flags.StringVar(&cfgPiUser, "pi-user", "", "SSH user on the Pi")
	flags.StringVar(&cfgPiHost, "pi-host", "", "Pi host name or IP (ssh_config aliases are resolved)")
	flags.IntVar(&cfgSSHPort, "ssh-port", 0, "SSH port on the Pi (0 uses ssh_config, then 22)")
	flags.StringVar(&cfgRepoPath, "repo-path", "", "Repository path on the Pi")
	flags.StringVar(&cfgRemoteActivate, "remote-activate", "venv/bin/activate", "Environment activation script, relative to --repo-path (empty to skip)")
	flags.StringVar(&cfgClientCmd, "client-cmd", "python3 client.py", "Client command line run on the Pi")

	// Local server
	flags.StringVar(&cfgServerHost, "server-host", "", "Host the readiness probe dials")
	flags.IntVar(&cfgServerPort, "server-port", 0, "Port the readiness probe dials")
	flags.StringVar(&cfgServerCmd, "server-cmd", "python3 server.py", "Local server command line")
	flags.StringVar(&cfgServerDir, "server-dir", "", "Working directory for the server (default: current)")
	flags.StringVar(&cfgServerLog, "server-log", "", "Append server output to this file instead of the terminal")
	flags.DurationVar(&cfgProbeInterval, "probe-interval", defaultProbeInterval, "Delay between readiness probes")
	flags.DurationVar(&cfgProbeTimeout, "probe-timeout", time.Minute, "Give up waiting for the server after this long (0 waits forever)")
	flags.DurationVar(&cfgStopTimeout, "stop-timeout", 5*time.Second, "Grace period between SIGTERM and SIGKILL for the server")

	// SSH
	flags.StringVar(&cfgPassword, "password", "", "SSH password (or set PIRUN_PASSWORD)")
	flags.StringVar(&cfgKeyPath, "key", "", "Path to SSH private key (default: ssh_config IdentityFile)")
	flags.StringVar(&cfgPassphrase, "passphrase", "", "Private key passphrase (or set PIRUN_PASSPHRASE)")
	flags.StringVar(&cfgKnownHosts, "known-hosts", filepath.Join(os.Getenv("HOME"), ".ssh", "known_hosts"), "Path to known_hosts file")
	flags.BoolVar(&cfgStrictHost, "strict-host-key", true, "Require host key verification (disable to accept any host key)")
	flags.DurationVar(&cfgConnTimeout, "conn-timeout", 15*time.Second, "SSH connection timeout")
	flags.DurationVar(&cfgCmdTimeout, "cmd-timeout", 0, "Remote command timeout (0 disables)")
	flags.BoolVar(&cfgRemotePTY, "remote-pty", false, "Request a PTY so the remote client is hung up when the session ends")

	// Output
	flags.StringVar(&cfgReportPath, "report", "", "Write a YAML run report to this path")
	flags.BoolVar(&cfgNoop, "noop", false, "Print the planned run without executing anything")
	flags.StringVar(&cfgLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&cfgLogJSON, "log-json", false, "Log JSON lines instead of console output")

	bindConfig()

	// Pull in environment overrides on init
	cobra.OnInitialize(applyEnvOverrides)

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(verifyCmd)
}

// bindConfig binds every persistent flag into Viper and enables PIRUN_*
// environment lookups (pi-host -> PIRUN_PI_HOST).
func bindConfig() {
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})
	viper.SetEnvPrefix("PIRUN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// envErrs holds the environment values the last applyEnvOverrides could not
// parse. resolveRunConfig reports them with the other configuration errors.
var envErrs *multierror.Error

// applyEnvOverrides copies environment values into flags the command line
// left untouched. Such flags then count as Changed, so a profile cannot
// override them.
func applyEnvOverrides() {
	envErrs = nil
	flags := rootCmd.PersistentFlags()
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !viper.IsSet(f.Name) {
			return
		}
		if err := flags.Set(f.Name, viper.GetString(f.Name)); err != nil {
			// pflag has already stored the zero value; restore the default.
			_ = f.Value.Set(f.DefValue)
			envErrs = multierror.Append(envErrs, fmt.Errorf("%s: %w", envVarName(f.Name), err))
		}
	})
}

// envVarName maps a flag name to its variable: pi-host -> PIRUN_PI_HOST.
func envVarName(flag string) string {
	return "PIRUN_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}
