// Command ssh_test_server serves a local SSH endpoint that accepts any user
// and answers every exec request, for trying pirun without a Pi.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	srv "github.com/BenAppdev/robot-project/tools/sshserv"
)

const listenAddr = "127.0.0.1:20222"

// reportCommand logs the command and echoes it back with exit status 0.
func reportCommand(command string, stdout, stderr io.Writer, stop <-chan struct{}) int {
	_, _ = fmt.Fprintln(stderr, "exec:", command)
	_, _ = fmt.Fprintf(stdout, "ran: %s\n", command)
	return 0
}

func main() {
	addr, stop, err := srv.Start(listenAddr, reportCommand)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "failed to start test ssh server:", err)
		os.Exit(1)
	}
	_, _ = fmt.Fprintln(os.Stderr, "test ssh server listening on", addr)
	defer stop()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
