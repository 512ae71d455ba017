package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/conn-castle/rigkit/internal/hierarchy"
	"github.com/conn-castle/rigkit/internal/messages"
)

// Dump is a rendered-ready hierarchy listing.
type Dump struct {
	SceneName string
	Generated time.Time
	RootCount int
	Walk      hierarchy.TraversalResult
}

// WriteDump renders a hierarchy listing: one line per node as
// "<indent><name> | <path>[ [Comp, ...]]" with a marker under nodes whose
// children were cut by the depth limit.
func WriteDump(w io.Writer, d Dump) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, messages.DumpHeaderFmt, d.SceneName)
	fmt.Fprintf(&b, messages.DumpGeneratedFmt, d.Generated.Format(time.RFC3339))
	fmt.Fprintf(&b, messages.DumpRootCountFmt, d.RootCount)
	b.WriteString("\n")

	for _, e := range d.Walk.Entries {
		indent := strings.Repeat("  ", e.Depth)
		b.WriteString(indent)
		b.WriteString(e.Name)
		b.WriteString(" | ")
		b.WriteString(e.Path)
		if len(e.Components) > 0 {
			b.WriteString(" [")
			b.WriteString(strings.Join(e.Components, ", "))
			b.WriteString("]")
		}
		b.WriteString("\n")
		if e.Truncated > 0 {
			fmt.Fprintf(&b, messages.DumpTruncatedFmt, indent, e.Truncated)
		}
	}
	if d.Walk.CyclesSkipped > 0 {
		fmt.Fprintf(&b, messages.DumpCyclesSkippedFmt, d.Walk.CyclesSkipped)
	}

	_, err := w.Write(b.Bytes())
	return err
}
