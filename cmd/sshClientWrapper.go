package cmd

import "golang.org/x/crypto/ssh"

// sshClientWrapper adapts *ssh.Client to sessionClient. With pty set, every
// session requests a pseudo-terminal so sshd hangs up the remote process
// group when the channel closes.
type sshClientWrapper struct {
	c   *ssh.Client
	pty bool
}

// sshSessionWrapper adapts *ssh.Session to session.
type sshSessionWrapper struct {
	s *ssh.Session
}
