package cmd

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// disposition is the server's final state as observed by the cleanup guard.
type disposition string

const (
	dispositionTerminated        disposition = "terminated"
	dispositionKilled            disposition = "killed"
	dispositionAlreadyExited     disposition = "already-exited"
	dispositionTerminationFailed disposition = "termination-failed"
)

// killWait bounds how long release waits for the process to be reaped after
// SIGKILL.
var killWait = 2 * time.Second

// cleanupGuard stops the launched server exactly once, however the run ends.
// The first release sends SIGTERM, waits up to grace, then escalates to
// SIGKILL. Later calls return the first result and signal nothing.
type cleanupGuard struct {
	proc  serverHandle
	grace time.Duration

	once   sync.Once
	result disposition
	err    error
}

func newCleanupGuard(proc serverHandle, grace time.Duration) *cleanupGuard {
	return &cleanupGuard{proc: proc, grace: grace}
}

func (g *cleanupGuard) release() (disposition, error) {
	g.once.Do(func() {
		g.result, g.err = g.stop()
	})
	return g.result, g.err
}

func (g *cleanupGuard) stop() (disposition, error) {
	select {
	case <-g.proc.Exited():
		return dispositionAlreadyExited, nil
	default:
	}

	if err := g.proc.requestStop(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return dispositionAlreadyExited, nil
		}
		return dispositionTerminationFailed, fmt.Errorf("terminate server pid %d: %w", g.proc.Pid(), err)
	}

	grace := time.NewTimer(g.grace)
	defer grace.Stop()
	select {
	case <-g.proc.Exited():
		return dispositionTerminated, nil
	case <-grace.C:
	}

	if err := g.proc.forceStop(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return dispositionTerminated, nil
		}
		return dispositionTerminationFailed, fmt.Errorf("kill server pid %d: %w", g.proc.Pid(), err)
	}
	reaped := time.NewTimer(killWait)
	defer reaped.Stop()
	select {
	case <-g.proc.Exited():
		return dispositionKilled, nil
	case <-reaped.C:
		return dispositionTerminationFailed, fmt.Errorf("server pid %d still running after SIGKILL", g.proc.Pid())
	}
}
