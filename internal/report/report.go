// Package report collects per-node outcomes of a run and renders them as text,
// JSON, or CSV.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conn-castle/rigkit/internal/errkind"
)

// Status is the outcome of one entry.
type Status string

// Entry statuses.
const (
	StatusOK      Status = "ok"
	StatusWarn    Status = "warn"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
)

// Entry is one reported node or asset.
type Entry struct {
	Path    string            `json:"path"`
	Status  Status            `json:"status"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorRecord is a classified error attached to the report.
type ErrorRecord struct {
	Kind    errkind.Kind `json:"kind"`
	Path    string       `json:"path,omitempty"`
	Message string       `json:"message"`
}

// Report is append-only: entries and errors are added, never rewritten.
type Report struct {
	Kind      string            `json:"kind"`
	RunID     string            `json:"runId"`
	Generated time.Time         `json:"generated"`
	Meta      map[string]string `json:"meta,omitempty"`
	Entries   []Entry           `json:"entries"`
	Counters  map[string]int    `json:"counters"`
	Errors    []ErrorRecord     `json:"errors"`
}

// New starts a report of the given kind with a fresh run id.
func New(kind string, generated time.Time) *Report {
	return &Report{
		Kind:      kind,
		RunID:     uuid.NewString(),
		Generated: generated,
		Meta:      map[string]string{},
		Entries:   []Entry{},
		Counters:  map[string]int{},
		Errors:    []ErrorRecord{},
	}
}

// Set records a metadata value.
func (r *Report) Set(key string, value string) {
	r.Meta[key] = value
}

// Setf records a formatted metadata value.
func (r *Report) Setf(key string, format string, args ...any) {
	r.Meta[key] = fmt.Sprintf(format, args...)
}

// Add appends an entry and bumps the counter named after its status.
func (r *Report) Add(e Entry) {
	r.Entries = append(r.Entries, e)
	r.Counters[string(e.Status)]++
}

// Count adds delta to a named counter.
func (r *Report) Count(name string, delta int) {
	r.Counters[name] += delta
}

// Fail records err with its classified kind. A nil error is ignored.
func (r *Report) Fail(path string, err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, ErrorRecord{Kind: errkind.Classify(err), Path: path, Message: err.Error()})
}

// HasFailures reports whether any entry failed or any error was recorded.
func (r *Report) HasFailures() bool {
	return len(r.Errors) > 0 || r.Counters[string(StatusFail)] > 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for _, k := range sortedKeys(fields) {
		parts = append(parts, k+"="+fields[k])
	}
	return strings.Join(parts, "; ")
}

// Format selects a renderer.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat maps a user-supplied name to a Format. Empty means text.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %w %q (want text, json, or csv)", errkind.ErrMalformed, ErrUnknownFormat, name)
	}
}

// Extension is the file extension conventionally used for f.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}
