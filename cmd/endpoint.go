package cmd

import (
	"net"
	"strconv"
)

// endpoint is the (host, port) pair the readiness probe dials.
type endpoint struct {
	Host string
	Port int
}

func (e endpoint) Addr() string { return net.JoinHostPort(e.Host, strconv.Itoa(e.Port)) }

func (e endpoint) String() string { return e.Addr() }

// remoteTarget describes where and what to run on the Pi.
type remoteTarget struct {
	User     string
	Host     string
	Addr     string // resolved host:port for the SSH dial
	Path     string
	Activate string
	Command  string
}

func (t remoteTarget) String() string { return t.User + "@" + t.Addr }
