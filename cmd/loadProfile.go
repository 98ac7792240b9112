package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// profileValue pairs a flag name with the profile value that backs it.
type profileValue struct {
	flag  string
	key   string
	value string
}

// loadProfile reads and validates the YAML profile: ports must be in range
// and durations must parse. Required fields are checked later, after flags
// and environment have been merged in.
func loadProfile(path string) (*profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := &profile{}
	if err := yamlUnmarshal(b, p); err != nil {
		return nil, err
	}
	for key, port := range map[string]int{"pi.port": p.Pi.Port, "server.port": p.Server.Port} {
		if port < 0 || port > 65535 {
			return nil, fmt.Errorf("profile %s must be between 1 and 65535", key)
		}
	}
	for _, v := range p.values() {
		if !isDurationFlag(v.flag) {
			continue
		}
		if _, err := time.ParseDuration(v.value); err != nil {
			return nil, fmt.Errorf("profile %s: %w", v.key, err)
		}
	}
	return p, nil
}

// values lists the profile entries that are set, in a stable order.
func (p *profile) values() []profileValue {
	var out []profileValue
	add := func(flag, key, value string) {
		if value != "" {
			out = append(out, profileValue{flag: flag, key: key, value: value})
		}
	}
	addInt := func(flag, key string, n int) {
		if n != 0 {
			add(flag, key, strconv.Itoa(n))
		}
	}
	addBool := func(flag, key string, b *bool) {
		if b != nil {
			add(flag, key, strconv.FormatBool(*b))
		}
	}

	add("pi-user", "pi.user", p.Pi.User)
	add("pi-host", "pi.host", p.Pi.Host)
	addInt("ssh-port", "pi.port", p.Pi.Port)
	add("repo-path", "pi.repo_path", p.Pi.RepoPath)
	if p.Pi.Activate != nil {
		// Empty is meaningful here: it disables activation.
		out = append(out, profileValue{flag: "remote-activate", key: "pi.activate", value: *p.Pi.Activate})
	}
	add("client-cmd", "pi.client_cmd", p.Pi.ClientCmd)

	add("server-host", "server.host", p.Server.Host)
	addInt("server-port", "server.port", p.Server.Port)
	add("server-cmd", "server.cmd", string(p.Server.Cmd))
	add("server-dir", "server.dir", p.Server.Dir)
	add("server-log", "server.log", p.Server.Log)
	add("stop-timeout", "server.stop_timeout", p.Server.StopTimeout)

	add("probe-interval", "probe.interval", p.Probe.Interval)
	add("probe-timeout", "probe.timeout", p.Probe.Timeout)

	add("key", "ssh.key", p.SSH.Key)
	add("known-hosts", "ssh.known_hosts", p.SSH.KnownHosts)
	addBool("strict-host-key", "ssh.strict_host_key", p.SSH.StrictHostKey)
	add("conn-timeout", "ssh.conn_timeout", p.SSH.ConnTimeout)
	add("cmd-timeout", "ssh.cmd_timeout", p.SSH.CmdTimeout)
	addBool("remote-pty", "ssh.pty", p.SSH.PTY)

	add("report", "report", p.Report)
	return out
}

// applyProfile copies profile values into flags that were not set on the
// command line or through the environment.
func applyProfile(flags *pflag.FlagSet, p *profile) error {
	for _, v := range p.values() {
		f := flags.Lookup(v.flag)
		if f == nil || f.Changed {
			continue
		}
		if err := flags.Set(v.flag, v.value); err != nil {
			return fmt.Errorf("profile %s: %w", v.key, err)
		}
	}
	return nil
}

func isDurationFlag(name string) bool {
	switch name {
	case "stop-timeout", "probe-interval", "probe-timeout", "conn-timeout", "cmd-timeout":
		return true
	}
	return false
}
