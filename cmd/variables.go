package cmd

import "time"

// Version is the CLI version string injected at build time via -ldflags.
var Version = "0.1.0"

var (
	// Global configuration populated by flags, PIRUN_* environment variables
	// and the optional YAML profile. Declared here so every subcommand sees
	// the same values.
	cfgProfile        string
	cfgPiUser         string
	cfgPiHost         string
	cfgSSHPort        int
	cfgRepoPath       string
	cfgRemoteActivate string
	cfgClientCmd      string
	cfgServerHost     string
	cfgServerPort     int
	cfgServerCmd      string
	cfgServerDir      string
	cfgServerLog      string
	cfgProbeInterval  time.Duration
	cfgProbeTimeout   time.Duration
	cfgStopTimeout    time.Duration
	cfgPassword       string
	cfgKeyPath        string
	cfgPassphrase     string
	cfgKnownHosts     string
	cfgStrictHost     bool
	cfgConnTimeout    time.Duration
	cfgCmdTimeout     time.Duration
	cfgRemotePTY      bool
	cfgReportPath     string
	cfgNoop           bool
	cfgLogLevel       string
	cfgLogJSON        bool
)

// Allow tests to stub the process, network and SSH edges of a run.
var (
	dialSSHFunc          = dialSSH
	runRemoteCommandFunc = runRemoteCommand
	waitForPortFunc      = waitForPort
	launchServerFunc     = func(spec serverSpec) (serverHandle, error) {
		p, err := launchServer(spec)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
)
