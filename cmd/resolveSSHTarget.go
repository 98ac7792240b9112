package cmd

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sshconfig "github.com/kevinburke/ssh_config"
)

const defaultSSHPort = 22

// sshConfigGet reads ~/.ssh/config and /etc/ssh/ssh_config; tests replace it.
var sshConfigGet = sshconfig.Get

// resolveSSHTarget returns the host:port to dial for host. HostName and Port
// come from ssh_config when present; an explicit port wins.
func resolveSSHTarget(host string, port int) string {
	hostName := host
	if h := strings.TrimSpace(sshConfigGet(host, "HostName")); h != "" {
		hostName = h
	}
	if port <= 0 {
		port = defaultSSHPort
		if p, err := strconv.Atoi(sshConfigGet(host, "Port")); err == nil && p > 0 {
			port = p
		}
	}
	return net.JoinHostPort(hostName, strconv.Itoa(port))
}

// identityFile picks the private key for host. An explicit path always wins
// and is reported as explicit; otherwise ssh_config's IdentityFile is used
// only if the file exists.
func identityFile(host, explicit string) (path string, isExplicit bool) {
	if explicit != "" {
		return expandHome(explicit), true
	}
	kf := sshConfigGet(host, "IdentityFile")
	if kf == "" {
		return "", false
	}
	kf = expandHome(kf)
	if _, err := os.Stat(kf); err != nil {
		return "", false
	}
	return kf, false
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
