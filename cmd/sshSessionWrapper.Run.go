package cmd

import "io"

// Run executes cmd on the remote side, streaming its stdout and stderr to
// the given writers, and blocks until the remote command exits.
func (w sshSessionWrapper) Run(cmd string, stdout, stderr io.Writer) error {
	w.s.Stdout = stdout
	w.s.Stderr = stderr
	return w.s.Run(cmd)
}
