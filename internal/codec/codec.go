// Package codec encodes the YAML and JSON documents rigkit reads and writes. The
// file extension selects the format.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/conn-castle/rigkit/internal/errkind"
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported document extension %q (want .yaml, .yml, or .json)", errkind.ErrMalformed, filepath.Ext(path))
	}
}

// Decode parses data into v. Errors wrap errkind.ErrMalformed.
func Decode(data []byte, format Format, v any) error {
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatJSON:
		err = json.Unmarshal(data, v)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errkind.ErrMalformed, err)
	}
	return nil
}

// Encode serializes v. JSON output is indented with two spaces.
func Encode(v any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(v)
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", errkind.ErrMalformed, format)
	}
}
