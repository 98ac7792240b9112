package cmd

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func testRunConfig() runConfig {
	return runConfig{
		Server:      serverSpec{Argv: []string{"python3", "server.py"}},
		Endpoint:    endpoint{Host: "127.0.0.1", Port: 5000},
		Probe:       probeOptions{Interval: 10 * time.Millisecond, Timeout: time.Second},
		StopTimeout: 50 * time.Millisecond,
		Remote: remoteTarget{
			User:     "pi",
			Host:     "raspberrypi",
			Addr:     "raspberrypi:22",
			Path:     "robot",
			Activate: "venv/bin/activate",
			Command:  "python3 client.py",
		},
		SSH: sshOptions{Host: "raspberrypi", Addr: "raspberrypi:22", User: "pi"},
	}
}

// pipeline stubs every seam and records the order in which they ran.
type pipeline struct {
	proc *fakeProcess

	probeErr  error
	dialErr   error
	runStatus int
	runErr    error
	// runBlock makes the remote command wait for ctx cancellation.
	runBlock bool

	mu    sync.Mutex
	calls []string
}

func (p *pipeline) record(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, name)
}

func (p *pipeline) order() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	stubSeams(t)
	p := &pipeline{proc: newFakeProcess()}
	launchServerFunc = func(spec serverSpec) (serverHandle, error) {
		p.record("launch")
		return p.proc, nil
	}
	waitForPortFunc = func(ctx context.Context, ep endpoint, opts probeOptions, exited <-chan struct{}) (int, error) {
		p.record("probe")
		if p.probeErr != nil {
			return 3, p.probeErr
		}
		return 1, nil
	}
	dialSSHFunc = func(ctx context.Context, opts sshOptions) (*ssh.Client, error) {
		p.record("dial")
		return nil, p.dialErr
	}
	runRemoteCommandFunc = func(ctx context.Context, client sessionClient, cmd string, timeout time.Duration, stdout, stderr io.Writer) (int, error) {
		p.record("run")
		if p.runBlock {
			<-ctx.Done()
			return -1, ErrInterrupted
		}
		return p.runStatus, p.runErr
	}
	return p
}

func runPipeline(ctx context.Context, cfg runConfig) (*runReport, error) {
	rep := newRunReport(cfg, "test-run")
	err := supervise(ctx, cfg, io.Discard, io.Discard, rep)
	rep.finish(err)
	return rep, err
}

func TestSupervise_Success(t *testing.T) {
	p := newPipeline(t)
	rep, err := runPipeline(context.Background(), testRunConfig())
	require.NoError(t, err)
	require.Equal(t, []string{"launch", "probe", "dial", "run"}, p.order())

	terms, kills := p.proc.stops()
	require.Equal(t, 1, terms)
	require.Equal(t, 0, kills)
	require.Equal(t, dispositionTerminated, rep.Server.Disposition)
	require.Equal(t, outcomeSuccess, rep.Outcome)
	require.Equal(t, 4242, rep.Server.Pid)
	require.NotNil(t, rep.Remote.ExitStatus)
	require.Equal(t, 0, *rep.Remote.ExitStatus)
	require.Len(t, rep.Phases, 3)
}

func TestSupervise_LaunchFailureSkipsProbeAndRemote(t *testing.T) {
	p := newPipeline(t)
	launchServerFunc = func(spec serverSpec) (serverHandle, error) {
		p.record("launch")
		return nil, &LaunchError{Command: spec.Argv, Err: errors.New("executable file not found")}
	}
	rep, err := runPipeline(context.Background(), testRunConfig())

	var launchErr *LaunchError
	require.True(t, errors.As(err, &launchErr))
	require.Equal(t, []string{"launch"}, p.order())
	require.Equal(t, outcomeLaunchError, rep.Outcome)
	require.Equal(t, exitLaunch, rep.ExitCode)
	require.Empty(t, rep.Server.Disposition)
}

func TestSupervise_ReadinessTimeout(t *testing.T) {
	p := newPipeline(t)
	p.probeErr = &ReadinessTimeoutError{Endpoint: endpoint{Host: "127.0.0.1", Port: 5000}, Attempts: 3, Waited: time.Second}
	rep, err := runPipeline(context.Background(), testRunConfig())

	var timeoutErr *ReadinessTimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	require.Equal(t, []string{"launch", "probe"}, p.order())
	terms, _ := p.proc.stops()
	require.Equal(t, 1, terms)
	require.Equal(t, exitReadinessTimeout, rep.ExitCode)
	require.Equal(t, 3, rep.Probe.Attempts)
	require.Nil(t, rep.Remote.ExitStatus)
}

func TestSupervise_ServerExitedWhileProbing(t *testing.T) {
	p := newPipeline(t)
	p.proc.exit()
	p.probeErr = &LaunchError{Err: errServerExited}
	rep, err := runPipeline(context.Background(), testRunConfig())

	var launchErr *LaunchError
	require.True(t, errors.As(err, &launchErr))
	require.ErrorIs(t, err, errServerExited)
	require.Equal(t, []string{"python3", "server.py"}, launchErr.Command)

	terms, kills := p.proc.stops()
	require.Zero(t, terms)
	require.Zero(t, kills)
	require.Equal(t, dispositionAlreadyExited, rep.Server.Disposition)
}

func TestSupervise_ConnectionError(t *testing.T) {
	p := newPipeline(t)
	p.dialErr = errors.New("connection refused")
	rep, err := runPipeline(context.Background(), testRunConfig())

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	require.Equal(t, "raspberrypi:22", connErr.Addr)
	require.Equal(t, []string{"launch", "probe", "dial"}, p.order())
	terms, _ := p.proc.stops()
	require.Equal(t, 1, terms)
	require.Equal(t, exitConnection, rep.ExitCode)
}

func TestSupervise_RemoteCommandError(t *testing.T) {
	p := newPipeline(t)
	p.runStatus = 3
	p.runErr = &RemoteCommandError{Status: 3}
	rep, err := runPipeline(context.Background(), testRunConfig())

	var remoteErr *RemoteCommandError
	require.True(t, errors.As(err, &remoteErr))
	require.Equal(t, 3, remoteErr.Status)
	terms, _ := p.proc.stops()
	require.Equal(t, 1, terms)
	require.Equal(t, exitRemoteCommand, rep.ExitCode)
	require.Equal(t, 3, *rep.Remote.ExitStatus)
}

func TestSupervise_InterruptDuringRemote(t *testing.T) {
	p := newPipeline(t)
	p.runBlock = true
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(30*time.Millisecond, cancel)

	rep, err := runPipeline(ctx, testRunConfig())
	require.ErrorIs(t, err, ErrInterrupted)
	terms, _ := p.proc.stops()
	require.Equal(t, 1, terms)
	require.Equal(t, outcomeInterrupted, rep.Outcome)
	require.Equal(t, exitInterrupted, rep.ExitCode)
}

func TestSupervise_InterruptDuringProbe(t *testing.T) {
	p := newPipeline(t)
	waitForPortFunc = func(ctx context.Context, ep endpoint, opts probeOptions, exited <-chan struct{}) (int, error) {
		p.record("probe")
		<-ctx.Done()
		return 1, ErrInterrupted
	}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	_, err := runPipeline(ctx, testRunConfig())
	require.ErrorIs(t, err, ErrInterrupted)
	require.Equal(t, []string{"launch", "probe"}, p.order())
	terms, _ := p.proc.stops()
	require.Equal(t, 1, terms)
}

func TestSupervise_DialCancelledIsInterrupt(t *testing.T) {
	p := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	dialSSHFunc = func(dctx context.Context, opts sshOptions) (*ssh.Client, error) {
		p.record("dial")
		cancel()
		return nil, dctx.Err()
	}
	_, err := runPipeline(ctx, testRunConfig())
	require.ErrorIs(t, err, ErrInterrupted)
	require.Equal(t, exitInterrupted, exitCodeFor(err))
}

func TestSupervise_EscalatesToKill(t *testing.T) {
	p := newPipeline(t)
	p.proc.exitOnTerm = false
	cfg := testRunConfig()
	cfg.StopTimeout = 10 * time.Millisecond

	rep, err := runPipeline(context.Background(), cfg)
	require.NoError(t, err)
	terms, kills := p.proc.stops()
	require.Equal(t, 1, terms)
	require.Equal(t, 1, kills)
	require.Equal(t, dispositionKilled, rep.Server.Disposition)
}

func TestSupervise_TerminationFailureIsReported(t *testing.T) {
	p := newPipeline(t)
	p.proc.termErr = errors.New("operation not permitted")

	rep, err := runPipeline(context.Background(), testRunConfig())
	require.Error(t, err)
	require.Contains(t, err.Error(), "operation not permitted")
	require.Equal(t, dispositionTerminationFailed, rep.Server.Disposition)
	require.Equal(t, outcomeFailed, rep.Outcome)
	require.Equal(t, exitFailure, rep.ExitCode)
}

func TestSupervise_TerminationFailureKeepsPhaseError(t *testing.T) {
	p := newPipeline(t)
	p.proc.termErr = errors.New("operation not permitted")
	p.runStatus = 2
	p.runErr = &RemoteCommandError{Status: 2}

	rep, err := runPipeline(context.Background(), testRunConfig())
	require.Contains(t, err.Error(), "operation not permitted")
	require.Contains(t, err.Error(), "exited with status 2")
	require.Equal(t, outcomeRemoteCommand, rep.Outcome)
	require.Equal(t, exitRemoteCommand, rep.ExitCode)
}

func TestSupervise_RemoteOutputTailInReport(t *testing.T) {
	p := newPipeline(t)
	runRemoteCommandFunc = func(ctx context.Context, client sessionClient, cmd string, timeout time.Duration, stdout, stderr io.Writer) (int, error) {
		p.record("run")
		_, _ = io.WriteString(stdout, "hello from pi\n")
		_, _ = io.WriteString(stderr, "warning\n")
		return 0, nil
	}
	rep, err := runPipeline(context.Background(), testRunConfig())
	require.NoError(t, err)
	require.Contains(t, rep.Remote.Output, "hello from pi")
	require.Contains(t, rep.Remote.Output, "warning")
}
