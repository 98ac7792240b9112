//go:build unix

package cmd

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// serverSysProcAttr puts the server in a new process group so the whole
// tree it spawns can be signalled at once.
func serverSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func signalTerminate(p *os.Process) error { return signalGroup(p, unix.SIGTERM) }

func signalKill(p *os.Process) error { return signalGroup(p, unix.SIGKILL) }

// signalGroup signals the leader through os.Process first: it refuses with
// os.ErrProcessDone once the process was reaped, so a recycled pid is never
// hit. Only then is the rest of the group signalled.
func signalGroup(p *os.Process, sig unix.Signal) error {
	if err := p.Signal(sig); err != nil {
		return err
	}
	if err := unix.Kill(-p.Pid, sig); err != nil && !errors.Is(err, unix.ESRCH) {
		return err
	}
	return nil
}
