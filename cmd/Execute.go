package cmd

import (
	"fmt"
	"os"
)

// exitFunc is swapped by tests to observe the exit code.
var exitFunc = os.Exit

// Execute runs the CLI and exits with the code of the phase that failed:
// 2 launch, 3 readiness timeout, 4 connection, 5 remote command,
// 130 interrupted, 1 anything else.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	code := exitCodeFor(err)
	_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitFunc(code)
}
