package cmd

import (
	"os"
	"os/exec"
)

// serverHandle is the supervisor's view of the launched server: enough to
// watch it exit and to stop it.
type serverHandle interface {
	Pid() int
	Exited() <-chan struct{}
	requestStop() error
	forceStop() error
}

// serverProcess owns the exec.Cmd of the launched server. A reaper goroutine
// waits on the process so it never lingers as a zombie and so later signals
// are refused once the pid may have been reused.
type serverProcess struct {
	cmd     *exec.Cmd
	argv    []string
	logFile *os.File

	done    chan struct{}
	waitErr error // valid once done is closed
}

func newServerProcess(cmd *exec.Cmd, argv []string, logFile *os.File) *serverProcess {
	p := &serverProcess{
		cmd:     cmd,
		argv:    argv,
		logFile: logFile,
		done:    make(chan struct{}),
	}
	go p.reap()
	return p
}

func (p *serverProcess) reap() {
	p.waitErr = p.cmd.Wait()
	if p.logFile != nil {
		_ = p.logFile.Close()
	}
	close(p.done)
}

// Pid returns the operating system process id.
func (p *serverProcess) Pid() int { return p.cmd.Process.Pid }

// Exited is closed after the process has exited and been reaped.
func (p *serverProcess) Exited() <-chan struct{} { return p.done }

// ExitCode is the process exit code, or -1 while running or when killed by
// a signal.
func (p *serverProcess) ExitCode() int {
	select {
	case <-p.done:
		return p.cmd.ProcessState.ExitCode()
	default:
		return -1
	}
}

// WaitErr is the error returned by exec.Cmd.Wait; nil until the process exits.
func (p *serverProcess) WaitErr() error {
	select {
	case <-p.done:
		return p.waitErr
	default:
		return nil
	}
}

func (p *serverProcess) requestStop() error { return signalTerminate(p.cmd.Process) }

func (p *serverProcess) forceStop() error { return signalKill(p.cmd.Process) }
