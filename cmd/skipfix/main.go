package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// version and commit are set at build time via -ldflags.
var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

// Exit codes.
const (
	exitOK          = 0
	exitUsage       = 1
	exitToolMissing = 2
	exitInterrupted = 130
)

// exitError carries a process exit code. logged marks errors that were
// already reported through the logger.
type exitError struct {
	code   int
	err    error
	logged bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command tree with args and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return exitCode(cmd.ExecuteContext(ctx), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if !ee.logged {
			fmt.Fprintf(stderr, "skipfix: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "skipfix: %v\n", err)
	return exitUsage
}
