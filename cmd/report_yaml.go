package cmd

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// runReport is the YAML summary of one supervised run, written when
// --report is set.
type runReport struct {
	Name     string        `yaml:"name,omitempty"`
	RunID    string        `yaml:"run_id"`
	Started  string        `yaml:"started"`
	Finished string        `yaml:"finished,omitempty"`
	Outcome  runOutcome    `yaml:"outcome"`
	ExitCode int           `yaml:"exit_code"`
	Error    string        `yaml:"error,omitempty"`
	Phases   []reportPhase `yaml:"phases,omitempty"`
	Server   reportServer  `yaml:"server"`
	Probe    reportProbe   `yaml:"probe"`
	Remote   reportRemote  `yaml:"remote"`
}

// reportPhase records how long one phase of the pipeline took.
type reportPhase struct {
	Name     string `yaml:"name"`
	Duration string `yaml:"duration"`
	Error    string `yaml:"error,omitempty"`
}

type reportServer struct {
	Command     string      `yaml:"command"`
	Pid         int         `yaml:"pid,omitempty"`
	Disposition disposition `yaml:"disposition,omitempty"`
}

type reportProbe struct {
	Endpoint string `yaml:"endpoint"`
	Attempts int    `yaml:"attempts"`
}

type reportRemote struct {
	Target     string `yaml:"target"`
	Command    string `yaml:"command"`
	ExitStatus *int   `yaml:"exit_status,omitempty"`
	Output     string `yaml:"output,omitempty"`
}

// newRunReport seeds a report with the planned run.
func newRunReport(cfg runConfig, runID string) *runReport {
	return &runReport{
		Name:    cfg.Name,
		RunID:   runID,
		Started: time.Now().Format(time.RFC3339),
		Server:  reportServer{Command: shellJoin(cfg.Server.Argv)},
		Probe:   reportProbe{Endpoint: cfg.Endpoint.Addr()},
		Remote: reportRemote{
			Target:  cfg.Remote.String(),
			Command: buildRemoteCommand(cfg.Remote),
		},
	}
}

// beginPhase starts timing a phase; the returned func records it.
func (r *runReport) beginPhase(name string) func(error) {
	start := time.Now()
	return func(err error) {
		p := reportPhase{Name: name, Duration: time.Since(start).Truncate(time.Millisecond).String()}
		if err != nil {
			p.Error = err.Error()
		}
		r.Phases = append(r.Phases, p)
	}
}

// setRemoteStatus records the remote exit status; negative means none.
func (r *runReport) setRemoteStatus(status int) {
	if status < 0 {
		return
	}
	r.Remote.ExitStatus = &status
}

// finish stamps the outcome derived from the run error.
func (r *runReport) finish(err error) {
	r.Finished = time.Now().Format(time.RFC3339)
	r.Outcome = outcomeFor(err)
	r.ExitCode = exitCodeFor(err)
	if err != nil {
		r.Error = err.Error()
	}
}

// writeYAMLReport serializes the report to YAML with indentation and writes to
// the provided writer in a buffered manner.
func writeYAMLReport(w io.Writer, r *runReport) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = enc.Close()
		return err
	}
	_ = enc.Close()
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(buf.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

// writeReportFile writes the report to path, creating parent directories.
func writeReportFile(path string, r *runReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeYAMLReport(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
