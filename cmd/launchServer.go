package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// serverSpec is everything the launcher needs to start the local server.
type serverSpec struct {
	Argv    []string
	Dir     string
	LogPath string
	// Stdout and Stderr receive the server's output when LogPath is empty.
	// Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// launchServer starts the server in the background, in its own process
// group, and returns without waiting for it to become ready.
func launchServer(spec serverSpec) (*serverProcess, error) {
	if len(spec.Argv) == 0 {
		return nil, &LaunchError{Err: errors.New("empty server command")}
	}

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.SysProcAttr = serverSysProcAttr()
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr

	var logFile *os.File
	if spec.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(spec.LogPath), 0o755); err != nil {
			return nil, &LaunchError{Command: spec.Argv, Err: fmt.Errorf("create log dir: %w", err)}
		}
		f, err := os.OpenFile(spec.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, &LaunchError{Command: spec.Argv, Err: fmt.Errorf("open server log: %w", err)}
		}
		logFile = f
		cmd.Stdout = f
		cmd.Stderr = f
	}

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, &LaunchError{Command: spec.Argv, Err: err}
	}

	p := newServerProcess(cmd, spec.Argv, logFile)
	log.Info().Int("pid", p.Pid()).Strs("argv", spec.Argv).Msg("server started")
	return p, nil
}
