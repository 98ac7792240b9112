package cmd

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

// runRemoteCommand runs cmd in a fresh session and returns its exit status.
// A non-zero status comes back as a RemoteCommandError, a session that could
// not be opened or broke mid-run as a ConnectionError. Cancelling ctx sends
// SIGTERM over the channel, closes it and returns ErrInterrupted; a positive
// timeout ends the command with a RemoteCommandError wrapping
// context.DeadlineExceeded.
func runRemoteCommand(ctx context.Context, client sessionClient, cmd string, timeout time.Duration, stdout, stderr io.Writer) (int, error) {
	sess, err := client.NewSession()
	if err != nil {
		return -1, &ConnectionError{Op: "open session", Err: err}
	}
	defer func() { _ = sess.Close() }()

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- sess.Run(cmd, stdout, stderr) }()

	select {
	case err := <-done:
		return exitStatus(err)
	case <-runCtx.Done():
		// Best effort: the remote side may ignore the signal; closing the
		// channel still unblocks Run.
		if err := sess.Signal(ssh.SIGTERM); err != nil {
			log.Debug().Err(err).Msg("remote signal not delivered")
		}
		_ = sess.Close()
		if ctx.Err() != nil {
			return -1, ErrInterrupted
		}
		return -1, &RemoteCommandError{Status: -1, Err: context.DeadlineExceeded}
	}
}

// exitStatus converts the error from ssh.Session.Run into an exit status
// and a classified error.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var ee *ssh.ExitError
	if errors.As(err, &ee) {
		if ee.Signal() != "" {
			return -1, &RemoteCommandError{Status: -1, Signal: ee.Signal(), Err: err}
		}
		return ee.ExitStatus(), &RemoteCommandError{Status: ee.ExitStatus(), Err: err}
	}
	var missing *ssh.ExitMissingError
	if errors.As(err, &missing) {
		return -1, &RemoteCommandError{Status: -1, Err: err}
	}
	return -1, &ConnectionError{Op: "run", Err: err}
}
