package cmd

import (
	"fmt"
	"strings"
	"time"

	shlex "github.com/anmitsu/go-shlex"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
)

// runConfig is the validated, immutable snapshot of one run's configuration.
type runConfig struct {
	Name        string
	Server      serverSpec
	Endpoint    endpoint
	Probe       probeOptions
	StopTimeout time.Duration
	Remote      remoteTarget
	SSH         sshOptions
	CmdTimeout  time.Duration
	RemotePTY   bool
	ReportPath  string
}

// resolveRunConfig merges the profile (if any) under the flag and
// environment values in flags and validates the result. Unparsable PIRUN_*
// values are reported alongside any validation errors.
func resolveRunConfig(flags *pflag.FlagSet) (runConfig, error) {
	cfg, err := mergeRunConfig(flags)
	if envErrs != nil {
		return runConfig{}, multierror.Append(&multierror.Error{Errors: append([]error(nil), envErrs.Errors...)}, err)
	}
	return cfg, err
}

func mergeRunConfig(flags *pflag.FlagSet) (runConfig, error) {
	name := ""
	if cfgProfile != "" {
		p, err := loadProfile(cfgProfile)
		if err != nil {
			return runConfig{}, fmt.Errorf("failed to read profile: %w", err)
		}
		if err := applyProfile(flags, p); err != nil {
			return runConfig{}, err
		}
		name = p.Name
	}
	return buildRunConfig(name)
}

// buildRunConfig snapshots the cfg* globals. All problems are reported at
// once.
func buildRunConfig(name string) (runConfig, error) {
	var errs *multierror.Error
	required := func(flag, v string) {
		if strings.TrimSpace(v) == "" {
			errs = multierror.Append(errs, fmt.Errorf("--%s is required", flag))
		}
	}
	required("pi-user", cfgPiUser)
	required("pi-host", cfgPiHost)
	required("repo-path", cfgRepoPath)
	required("server-host", cfgServerHost)
	required("client-cmd", cfgClientCmd)

	if cfgServerPort < 1 || cfgServerPort > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("--server-port must be between 1 and 65535, got %d", cfgServerPort))
	}
	if cfgSSHPort < 0 || cfgSSHPort > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("--ssh-port must be between 0 and 65535, got %d", cfgSSHPort))
	}
	if cfgProbeInterval <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("--probe-interval must be positive, got %s", cfgProbeInterval))
	}
	for flag, d := range map[string]time.Duration{
		"probe-timeout": cfgProbeTimeout,
		"stop-timeout":  cfgStopTimeout,
		"conn-timeout":  cfgConnTimeout,
		"cmd-timeout":   cfgCmdTimeout,
	} {
		if d < 0 {
			errs = multierror.Append(errs, fmt.Errorf("--%s must not be negative, got %s", flag, d))
		}
	}

	argv, err := shlex.Split(cfgServerCmd, true)
	switch {
	case err != nil:
		errs = multierror.Append(errs, fmt.Errorf("--server-cmd: %w", err))
	case len(argv) == 0:
		errs = multierror.Append(errs, fmt.Errorf("--server-cmd is required"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return runConfig{}, err
	}

	addr := resolveSSHTarget(cfgPiHost, cfgSSHPort)
	return runConfig{
		Name: name,
		Server: serverSpec{
			Argv:    argv,
			Dir:     cfgServerDir,
			LogPath: cfgServerLog,
		},
		Endpoint: endpoint{Host: cfgServerHost, Port: cfgServerPort},
		Probe: probeOptions{
			Interval: cfgProbeInterval,
			Timeout:  cfgProbeTimeout,
		},
		StopTimeout: cfgStopTimeout,
		Remote: remoteTarget{
			User:     cfgPiUser,
			Host:     cfgPiHost,
			Addr:     addr,
			Path:     cfgRepoPath,
			Activate: cfgRemoteActivate,
			Command:  cfgClientCmd,
		},
		SSH: sshOptions{
			Host:        cfgPiHost,
			Addr:        addr,
			User:        cfgPiUser,
			Password:    cfgPassword,
			KeyPath:     cfgKeyPath,
			Passphrase:  cfgPassphrase,
			KnownHosts:  cfgKnownHosts,
			StrictHost:  cfgStrictHost,
			ConnTimeout: cfgConnTimeout,
		},
		CmdTimeout: cfgCmdTimeout,
		RemotePTY:  cfgRemotePTY,
		ReportPath: cfgReportPath,
	}, nil
}
