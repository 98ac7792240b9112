// Package cmd implements the pirun command-line interface.
//
// pirun supervises one run of the robot experiment: it starts the local
// server program in the background, waits until the server's TCP port
// accepts connections, runs the client program on the Raspberry Pi over SSH,
// and terminates the local server on every exit path (success, failure or
// interrupt).
//
// New contributors should start with rootCmd.go to see how cobra and viper
// are wired, supervise.go for the run pipeline, launchServer.go and
// cleanupGuard.go for the local process lifecycle, waitForPort.go for the
// readiness probe, and runRemoteCommand.go for the SSH side.
package cmd
