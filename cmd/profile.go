package cmd

// profile models the optional YAML run profile. Every field is a fallback:
// flags and PIRUN_* environment variables take precedence.
type profile struct {
	Name   string        `yaml:"name"`
	Pi     piProfile     `yaml:"pi"`
	Server serverProfile `yaml:"server"`
	Probe  probeProfile  `yaml:"probe"`
	SSH    sshProfile    `yaml:"ssh"`
	Report string        `yaml:"report"`
}

// piProfile describes the remote side. Activate is a pointer so that an
// explicit empty string can disable environment activation.
type piProfile struct {
	User      string  `yaml:"user"`
	Host      string  `yaml:"host"`
	Port      int     `yaml:"port"`
	RepoPath  string  `yaml:"repo_path"`
	Activate  *string `yaml:"activate"`
	ClientCmd string  `yaml:"client_cmd"`
}

// serverProfile describes the local server. Cmd accepts either a command
// line string or a list of arguments.
type serverProfile struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Cmd         serverCommand `yaml:"cmd"`
	Dir         string        `yaml:"dir"`
	Log         string        `yaml:"log"`
	StopTimeout string        `yaml:"stop_timeout"`
}

type probeProfile struct {
	Interval string `yaml:"interval"`
	Timeout  string `yaml:"timeout"`
}

type sshProfile struct {
	Key           string `yaml:"key"`
	KnownHosts    string `yaml:"known_hosts"`
	StrictHostKey *bool  `yaml:"strict_host_key"`
	ConnTimeout   string `yaml:"conn_timeout"`
	CmdTimeout    string `yaml:"cmd_timeout"`
	PTY           *bool  `yaml:"pty"`
}

// serverCommand is the server command line, normalised to a single string.
type serverCommand string
