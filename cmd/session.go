package cmd

import (
	"io"

	"golang.org/x/crypto/ssh"
)

// session is a single remote exec channel: run one command, signal it, close.
type session interface {
	Run(cmd string, stdout, stderr io.Writer) error
	Signal(sig ssh.Signal) error
	Close() error
}

// sessionClient opens sessions. runRemoteCommand only needs this much of an
// SSH client, so tests can run it without a network.
type sessionClient interface {
	NewSession() (session, error)
}
