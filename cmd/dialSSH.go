package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// sshOptions carries everything dialSSH needs. Host is the name as given
// (used for ssh_config lookups), Addr the resolved host:port.
type sshOptions struct {
	Host        string
	Addr        string
	User        string
	Password    string
	KeyPath     string
	Passphrase  string
	KnownHosts  string
	StrictHost  bool
	ConnTimeout time.Duration
}

// dialSSH establishes an SSH client connection with options
func dialSSH(ctx context.Context, opts sshOptions) (*ssh.Client, error) {
	var auths []ssh.AuthMethod

	if keyPath, explicit := identityFile(opts.Host, opts.KeyPath); keyPath != "" {
		signer, err := loadSigner(keyPath, opts.Passphrase)
		switch {
		case err == nil:
			auths = append(auths, ssh.PublicKeys(signer))
		case explicit:
			return nil, fmt.Errorf("load key: %w", err)
		default:
			// IdentityFile from ssh_config is only a hint.
			log.Debug().Err(err).Str("key", keyPath).Msg("skipping ssh_config identity")
		}
	}

	if opts.Password != "" {
		auths = append(auths, ssh.Password(opts.Password))
	}

	// Try SSH agent if available. Its signers are only used during the
	// handshake, so the socket is closed when dialSSH returns.
	if a := os.Getenv("SSH_AUTH_SOCK"); a != "" {
		if agentConn, err := net.Dial("unix", a); err == nil {
			defer agentConn.Close()
			ag := agent.NewClient(agentConn)
			auths = append(auths, ssh.PublicKeysCallback(ag.Signers))
		}
	}

	var hostKeyCB ssh.HostKeyCallback
	if opts.StrictHost {
		// Try known_hosts file if present; else fail closed
		if _, err := os.Stat(opts.KnownHosts); err != nil {
			return nil, fmt.Errorf("known_hosts file not found at %s and strict-host-key is enabled", opts.KnownHosts)
		}
		cb, err := knownhosts.New(opts.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("known_hosts: %w", err)
		}
		hostKeyCB = cb
	} else {
		hostKeyCB = ssh.InsecureIgnoreHostKey()
	}

	cfg := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            auths,
		HostKeyCallback: hostKeyCB,
		Timeout:         opts.ConnTimeout,
	}

	d := net.Dialer{Timeout: opts.ConnTimeout}
	conn, err := d.DialContext(ctx, "tcp", opts.Addr)
	if err != nil {
		return nil, err
	}
	// The handshake has no timeout of its own.
	if opts.ConnTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(opts.ConnTimeout))
	}
	// Cancelling ctx mid-handshake closes conn, which unblocks NewClientConn.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	c, chans, reqs, err := ssh.NewClientConn(conn, opts.Addr, cfg)
	if !stop() {
		if err == nil {
			_ = c.Close()
		}
		return nil, ctx.Err()
	}
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(c, chans, reqs), nil
}
