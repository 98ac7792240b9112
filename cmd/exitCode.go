package cmd

import "errors"

// Process exit codes, one per failed phase.
const (
	exitOK               = 0
	exitFailure          = 1
	exitLaunch           = 2
	exitReadinessTimeout = 3
	exitConnection       = 4
	exitRemoteCommand    = 5
	exitInterrupted      = 130
)

// runOutcome is the terminal result of a supervised run.
type runOutcome string

const (
	outcomeSuccess          runOutcome = "success"
	outcomeLaunchError      runOutcome = "launch-error"
	outcomeReadinessTimeout runOutcome = "readiness-timeout"
	outcomeConnectionError  runOutcome = "connection-error"
	outcomeRemoteCommand    runOutcome = "remote-command-error"
	outcomeInterrupted      runOutcome = "interrupted"
	outcomeFailed           runOutcome = "failed"
)

// outcomeFor classifies err. A termination failure appended to a phase
// error does not hide the phase.
func outcomeFor(err error) runOutcome {
	var (
		launchErr  *LaunchError
		timeoutErr *ReadinessTimeoutError
		connErr    *ConnectionError
		remoteErr  *RemoteCommandError
	)
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.As(err, &launchErr):
		return outcomeLaunchError
	case errors.As(err, &timeoutErr):
		return outcomeReadinessTimeout
	case errors.As(err, &connErr):
		return outcomeConnectionError
	case errors.As(err, &remoteErr):
		return outcomeRemoteCommand
	case errors.Is(err, ErrInterrupted):
		return outcomeInterrupted
	default:
		return outcomeFailed
	}
}

// exitCodeFor maps a run error to the process exit code.
func exitCodeFor(err error) int {
	switch outcomeFor(err) {
	case outcomeSuccess:
		return exitOK
	case outcomeLaunchError:
		return exitLaunch
	case outcomeReadinessTimeout:
		return exitReadinessTimeout
	case outcomeConnectionError:
		return exitConnection
	case outcomeRemoteCommand:
		return exitRemoteCommand
	case outcomeInterrupted:
		return exitInterrupted
	default:
		return exitFailure
	}
}
