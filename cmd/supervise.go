package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

// supervise runs one launch → probe → remote pipeline. The cleanup guard is
// armed as soon as the server is running, so the server is stopped exactly
// once whether the run succeeds, fails or ctx is cancelled. A failure to stop
// the server is appended to the phase error rather than replacing it.
func supervise(ctx context.Context, cfg runConfig, stdout, stderr io.Writer, rep *runReport) (err error) {
	endLaunch := rep.beginPhase("launch")
	proc, err := launchServerFunc(cfg.Server)
	endLaunch(err)
	if err != nil {
		log.Error().Err(err).Msg("server launch failed")
		return err
	}
	rep.Server.Pid = proc.Pid()

	guard := newCleanupGuard(proc, cfg.StopTimeout)
	defer func() {
		disp, stopErr := guard.release()
		rep.Server.Disposition = disp
		ev := log.Info()
		if stopErr != nil {
			ev = log.Error().Err(stopErr)
			err = multierror.Append(err, stopErr)
		}
		ev.Int("pid", proc.Pid()).Str("disposition", string(disp)).Msg("server stopped")
	}()

	endProbe := rep.beginPhase("probe")
	log.Info().Str("endpoint", cfg.Endpoint.Addr()).Dur("interval", cfg.Probe.Interval).
		Dur("timeout", cfg.Probe.Timeout).Msg("waiting for server")
	attempts, err := waitForPortFunc(ctx, cfg.Endpoint, cfg.Probe, proc.Exited())
	rep.Probe.Attempts = attempts
	var launchErr *LaunchError
	if errors.As(err, &launchErr) && launchErr.Command == nil {
		launchErr.Command = cfg.Server.Argv
	}
	endProbe(err)
	if err != nil {
		log.Error().Err(err).Int("attempts", attempts).Msg("server not ready")
		return err
	}
	log.Info().Int("attempts", attempts).Msg("server ready")

	endRemote := rep.beginPhase("remote")
	status, err := invokeRemote(ctx, cfg, stdout, stderr, rep)
	rep.setRemoteStatus(status)
	endRemote(err)
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg("remote command failed")
		return err
	}
	log.Info().Msg("remote command finished")
	return nil
}

// invokeRemote dials the Pi and runs the client pipeline once.
func invokeRemote(ctx context.Context, cfg runConfig, stdout, stderr io.Writer, rep *runReport) (int, error) {
	log.Info().Str("target", cfg.Remote.String()).Msg("connecting to pi")
	client, err := dialSSHFunc(ctx, cfg.SSH)
	if err != nil {
		if ctx.Err() != nil {
			return -1, ErrInterrupted
		}
		return -1, &ConnectionError{Op: "dial", Addr: cfg.SSH.Addr, Err: err}
	}
	defer func(c *ssh.Client) {
		if c != nil {
			_ = c.Close()
		}
	}(client)

	tail := newTailBuffer(defaultOutputTail)
	defer func() { rep.Remote.Output = tail.String() }()

	line := buildRemoteCommand(cfg.Remote)
	log.Info().Str("command", line).Msg("running remote command")
	return runRemoteCommandFunc(ctx, sshClientWrapper{c: client, pty: cfg.RemotePTY}, line, cfg.CmdTimeout,
		io.MultiWriter(stdout, tail), io.MultiWriter(stderr, tail))
}
