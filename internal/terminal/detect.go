// Package terminal provides terminal detection utilities.
package terminal

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stdout are both interactive terminals.
// Confirmation prompts require it.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// IsTerminal reports whether w is a file descriptor attached to a terminal.
// Buffers and pipes are not.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
