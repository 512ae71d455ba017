package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/conn-castle/rigkit/internal/batch"
	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/messages"
)

var executeFunc = execute

// Version, Commit, and BuildDate are overridden at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	runMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

// SilentExitError reports an exit code without emitting error output. Commands
// print their own diagnostics before returning it.
type SilentExitError struct {
	Code int
}

func (e *SilentExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// execute runs the CLI command with the provided args and output writers.
// Interrupts cancel the command context; runs stop at the next checkpoint.
func execute(args []string, stdout io.Writer, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd()
	cmd.Version = versionString()
	cmd.SetVersionTemplate(messages.VersionTemplate)
	if len(args) > 1 {
		cmd.SetArgs(args[1:])
	} else {
		cmd.SetArgs([]string{})
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

// runMain executes the CLI and exits with the result code of the failure, if any.
func runMain(args []string, stdout io.Writer, stderr io.Writer, exit func(int)) {
	err := executeFunc(args, stdout, stderr)
	if err == nil {
		return
	}
	var silent *SilentExitError
	if errors.As(err, &silent) {
		exit(silent.Code)
		return
	}
	_, _ = fmt.Fprintln(stderr, err)
	exit(exitCodeFor(err))
}

// exitCodeFor maps errors raised before a run starts. Usage errors from cobra
// carry no kind and exit as unexpected.
func exitCodeFor(err error) int {
	return batch.CodeForKind(errkind.Classify(err))
}

// versionString formats Version with optional commit and build date metadata.
func versionString() string {
	meta := []string{}
	if Commit != "" && Commit != "unknown" {
		meta = append(meta, fmt.Sprintf(messages.VersionCommitFmt, Commit))
	}
	if BuildDate != "" && BuildDate != "unknown" {
		meta = append(meta, fmt.Sprintf(messages.VersionBuildFmt, BuildDate))
	}
	if len(meta) == 0 {
		return Version
	}
	return fmt.Sprintf(messages.VersionFullFmt, Version, strings.Join(meta, ", "))
}
