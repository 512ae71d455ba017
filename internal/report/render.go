package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/conn-castle/rigkit/internal/messages"
)

// TextOptions controls the human-readable renderer.
type TextOptions struct {
	Color bool
}

// Write renders r in format f.
func Write(w io.Writer, r *Report, f Format, opts TextOptions) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	default:
		return WriteText(w, r, opts)
	}
}

// WriteJSON renders r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV renders r as one table whose first column names the section:
// summary, entry, or error.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "kind", r.Kind},
		{"summary", "run_id", r.RunID},
		{"summary", "generated", r.Generated.Format(time.RFC3339)},
	}
	for _, k := range sortedKeys(r.Meta) {
		rows = append(rows, []string{"summary", "meta." + k, r.Meta[k]})
	}
	for _, k := range sortedKeys(r.Counters) {
		rows = append(rows, []string{"summary", "counter." + k, strconv.Itoa(r.Counters[k])})
	}
	rows = append(rows, []string{"entry", "path", "status", "message", "fields"})
	for _, e := range r.Entries {
		rows = append(rows, []string{"entry", e.Path, string(e.Status), e.Message, formatFields(e.Fields)})
	}
	rows = append(rows, []string{"error", "kind", "path", "message"})
	for _, e := range r.Errors {
		rows = append(rows, []string{"error", string(e.Kind), e.Path, e.Message})
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteText renders r for a terminal.
func WriteText(w io.Writer, r *Report, opts TextOptions) error {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	faint := color.New(color.Faint)
	for _, c := range []*color.Color{green, yellow, red, faint} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, messages.ReportHeaderFmt, r.Kind)
	fmt.Fprintf(&b, messages.ReportRunIDFmt, r.RunID)
	fmt.Fprintf(&b, messages.ReportGeneratedFmt, r.Generated.Format(time.RFC3339))
	for _, k := range sortedKeys(r.Meta) {
		fmt.Fprintf(&b, messages.ReportMetaFmt, k, r.Meta[k])
	}
	b.WriteString("\n")

	for _, e := range r.Entries {
		var label string
		switch e.Status {
		case StatusOK:
			label = green.Sprint(messages.ReportStatusOKLabel)
		case StatusWarn:
			label = yellow.Sprint(messages.ReportStatusWarnLabel)
		case StatusFail:
			label = red.Sprint(messages.ReportStatusFailLabel)
		default:
			label = faint.Sprint(messages.ReportStatusSkippedLabel)
		}
		fmt.Fprintf(&b, messages.ReportEntryFmt, label, e.Path)
		if e.Message != "" {
			fmt.Fprintf(&b, messages.ReportEntryMessageFmt, e.Message)
		}
		if len(e.Fields) > 0 {
			fmt.Fprintf(&b, messages.ReportEntryMessageFmt, formatFields(e.Fields))
		}
	}

	if len(r.Errors) > 0 {
		b.WriteString("\n")
		fmt.Fprintln(&b, red.Sprint(messages.ReportErrorsHeader))
		for _, e := range r.Errors {
			if e.Path != "" {
				fmt.Fprintf(&b, messages.ReportErrorWithPathFmt, e.Kind, e.Path, e.Message)
				continue
			}
			fmt.Fprintf(&b, messages.ReportErrorFmt, e.Kind, e.Message)
		}
	}

	b.WriteString("\n")
	fmt.Fprintln(&b, messages.ReportSummaryHeader)
	for _, k := range sortedKeys(r.Counters) {
		fmt.Fprintf(&b, messages.ReportCounterFmt, k, r.Counters[k])
	}

	_, err := w.Write(b.Bytes())
	return err
}
