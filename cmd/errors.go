package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInterrupted reports that SIGINT or SIGTERM cancelled the run.
var ErrInterrupted = errors.New("interrupted")

// errServerExited is wrapped in a LaunchError when the server process dies
// before its port ever accepted a connection.
var errServerExited = errors.New("server exited before accepting connections")

// LaunchError reports that the local server could not be started.
type LaunchError struct {
	Command []string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch server %q: %v", strings.Join(e.Command, " "), e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ReadinessTimeoutError reports that the server port never accepted a
// connection within the configured probe timeout.
type ReadinessTimeoutError struct {
	Endpoint endpoint
	Attempts int
	Waited   time.Duration
}

func (e *ReadinessTimeoutError) Error() string {
	return fmt.Sprintf("server at %s not ready after %s (%d attempts)",
		e.Endpoint, e.Waited.Truncate(time.Millisecond), e.Attempts)
}

// ConnectionError reports that the SSH session to the Pi could not be
// established or broke before the remote command reported an exit status.
type ConnectionError struct {
	Addr string
	Op   string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("ssh %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ssh %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RemoteCommandError reports a remote pipeline that finished unsuccessfully.
// Status is -1 when the remote side gave no exit status (killed by a signal,
// timed out, or the channel closed first).
type RemoteCommandError struct {
	Status int
	Signal string
	Err    error
}

func (e *RemoteCommandError) Error() string {
	switch {
	case e.Signal != "":
		return fmt.Sprintf("remote command killed by signal %s", e.Signal)
	case e.Status < 0 && e.Err != nil:
		return fmt.Sprintf("remote command ended without exit status: %v", e.Err)
	default:
		return fmt.Sprintf("remote command exited with status %d", e.Status)
	}
}

func (e *RemoteCommandError) Unwrap() error { return e.Err }
