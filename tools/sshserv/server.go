// Package sshserv is a small in-process SSH server for tests and local dry
// runs. It accepts any user without authentication and hands every exec
// request to a Handler.
package sshserv

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// Handler runs one exec request. It writes the command's output to stdout
// and stderr and returns the exit status sent back to the client. Closing
// over a channel lets a handler block until the client signals or hangs up;
// stop is closed when either happens.
type Handler func(command string, stdout, stderr io.Writer, stop <-chan struct{}) int

// Echo is a Handler that prints "ok" and exits 0.
func Echo(command string, stdout, stderr io.Writer, stop <-chan struct{}) int {
	_, _ = io.WriteString(stdout, "ok\n")
	return 0
}

// Start launches a test SSH server listening on listenAddr (use
// 127.0.0.1:0 for an ephemeral port). It returns the bound address and a
// stop function that closes the listener and waits for the accept loop.
func Start(listenAddr string, h Handler) (string, func(), error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", nil, err
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return "", nil, err
	}
	cfg := &ssh.ServerConfig{NoClientAuth: true}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return "", nil, err
	}

	stopCh := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_ = ln.(*net.TCPListener).SetDeadline(time.Now().Add(500 * time.Millisecond))
			conn, err := ln.Accept()
			select {
			case <-stopCh:
				if conn != nil {
					_ = conn.Close()
				}
				return
			default:
			}
			if err != nil {
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					continue
				}
				return
			}
			go handleConn(conn, cfg, h)
		}
	}()

	stop := func() {
		close(stopCh)
		_ = ln.Close()
		<-done
	}
	return ln.Addr().String(), stop, nil
}

func handleConn(raw net.Conn, cfg *ssh.ServerConfig, h Handler) {
	sc, chans, reqs, err := ssh.NewServerConn(raw, cfg)
	if err != nil {
		_ = raw.Close()
		return
	}
	defer sc.Close()
	go ssh.DiscardRequests(reqs)
	for ch := range chans {
		if ch.ChannelType() != "session" {
			_ = ch.Reject(ssh.UnknownChannelType, "")
			continue
		}
		c, reqs, err := ch.Accept()
		if err != nil {
			continue
		}
		go handleSession(c, reqs, h)
	}
}

func handleSession(ch ssh.Channel, in <-chan *ssh.Request, h Handler) {
	defer ch.Close()
	var (
		stopOnce sync.Once
		stop     = make(chan struct{})
		exited   = make(chan struct{})
		started  bool
	)
	halt := func() { stopOnce.Do(func() { close(stop) }) }
	defer halt()

	for {
		var req *ssh.Request
		var ok bool
		select {
		case req, ok = <-in:
		case <-exited:
			return
		}
		if !ok {
			// Client hung up; give a running handler its stop signal.
			halt()
			if started {
				<-exited
			}
			return
		}
		switch req.Type {
		case "pty-req", "env":
			_ = req.Reply(true, nil)
		case "signal":
			halt()
			if req.WantReply {
				_ = req.Reply(true, nil)
			}
		case "exec":
			var payload struct{ Command string }
			if started || ssh.Unmarshal(req.Payload, &payload) != nil {
				_ = req.Reply(false, nil)
				continue
			}
			started = true
			_ = req.Reply(true, nil)
			go func(command string) {
				defer close(exited)
				code := h(command, ch, ch.Stderr(), stop)
				status := struct{ Status uint32 }{uint32(code)}
				_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(&status))
				_ = ch.CloseWrite()
			}(payload.Command)
		default:
			_ = req.Reply(false, nil)
		}
	}
}
