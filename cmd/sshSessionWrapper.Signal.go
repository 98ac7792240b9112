package cmd

import "golang.org/x/crypto/ssh"

// Signal forwards sig to the remote process. Many sshd builds ignore signal
// requests, so callers treat this as best effort and close the channel too.
func (w sshSessionWrapper) Signal(sig ssh.Signal) error {
	return w.s.Signal(sig)
}
