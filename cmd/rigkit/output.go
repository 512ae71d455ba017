package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conn-castle/rigkit/internal/batch"
	"github.com/conn-castle/rigkit/internal/messages"
	"github.com/conn-castle/rigkit/internal/report"
)

// printOutcome writes the run summary to w. Quiet sessions print only the
// error line.
func printOutcome(w io.Writer, sess *session, out batch.Outcome) error {
	red := color.New(color.FgRed, color.Bold)
	if sess.color {
		red.EnableColor()
	} else {
		red.DisableColor()
	}
	if out.Err != nil {
		_, _ = red.Fprintf(w, messages.BonesErrorFmt, out.Kind, out.Err)
	}
	if sess.quiet {
		return nil
	}

	fmt.Fprintf(w, messages.BonesStateFmt, out.State, out.Code)
	if out.Root != "" {
		fmt.Fprintf(w, messages.BonesRootFmt, out.Root)
	}
	if len(out.Bones) > 0 {
		fmt.Fprintf(w, messages.BonesMatchedFmt, len(out.Bones), strings.Join(out.Bones, ", "))
	}
	for _, path := range out.Artifacts {
		fmt.Fprintf(w, messages.BonesArtifactFmt, path)
	}
	if out.Report.Meta["dry_run"] == "true" && out.State == batch.StateDone {
		if out.Diff == "" {
			fmt.Fprintln(w, messages.BonesDryRunNoChanges)
		} else {
			fmt.Fprintln(w, messages.BonesDryRunHeader)
			fmt.Fprint(w, out.Diff)
		}
	}
	fmt.Fprintln(w)
	return report.WriteText(w, out.Report, report.TextOptions{Color: sess.color})
}

// exitFor turns a non-zero code into a silent exit; diagnostics are already
// printed.
func exitFor(code int) error {
	if code == batch.CodeSuccess {
		return nil
	}
	return &SilentExitError{Code: code}
}
