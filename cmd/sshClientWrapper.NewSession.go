package cmd

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// NewSession opens a new exec channel on the underlying *ssh.Client and wraps
// it in a session-compatible adapter.
func (w sshClientWrapper) NewSession() (session, error) {
	if w.c == nil {
		return nil, fmt.Errorf("nil ssh client")
	}
	s, err := w.c.NewSession()
	if err != nil {
		return nil, err
	}
	if w.pty {
		modes := ssh.TerminalModes{
			ssh.ECHO:          0,     // no echo of our own command line
			ssh.TTY_OP_ISPEED: 14400, // input speed = 14.4kbaud
			ssh.TTY_OP_OSPEED: 14400, // output speed = 14.4kbaud
		}
		rows, cols := ptySize()
		if err := s.RequestPty("xterm", rows, cols, modes); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("request pty: %w", err)
		}
	}
	return sshSessionWrapper{s}, nil
}

// ptySize mirrors the local terminal when there is one, else 40x80.
func ptySize() (rows, cols int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		return h, w
	}
	return 40, 80
}
