//go:build !unix

package cmd

import (
	"os"
	"syscall"
)

func serverSysProcAttr() *syscall.SysProcAttr { return nil }

// No process groups or SIGTERM here; both stop requests kill the leader.
func signalTerminate(p *os.Process) error { return p.Kill() }

func signalKill(p *os.Process) error { return p.Kill() }
