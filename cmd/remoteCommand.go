package cmd

import "strings"

// buildRemoteCommand renders the pipeline run on the Pi: change into the
// repository, source the environment activation script (skipped when
// empty), then run the client command line as given.
func buildRemoteCommand(t remoteTarget) string {
	steps := []string{"cd " + quoteRemotePath(t.Path)}
	if a := strings.TrimSpace(t.Activate); a != "" {
		steps = append(steps, ". "+quoteRemotePath(a))
	}
	steps = append(steps, strings.TrimSpace(t.Command))
	return strings.Join(steps, " && ")
}

// quoteRemotePath quotes p but keeps a leading ~ expandable on the remote.
func quoteRemotePath(p string) string {
	switch {
	case p == "~":
		return `"$HOME"`
	case strings.HasPrefix(p, "~/"):
		return `"$HOME"/` + shellQuote(p[2:])
	default:
		return shellQuote(p)
	}
}
