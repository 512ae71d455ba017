package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/messages"
)

// ErrConfigValidation wraps unknown keys and out-of-range values, as opposed to
// syntax or filesystem failures. Errors wrapping it also match
// errkind.ErrMalformed.
var ErrConfigValidation = errors.New("config validation failed")

// Format is a settings file encoding.
type Format string

// Settings formats.
const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor picks the settings format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: "+messages.ConfigUnsupportedExtFmt, errkind.ErrMalformed, path)
	}
}

// Load reads settings from path over the defaults. An empty path or a missing
// file yields the defaults.
func Load(path string) (Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: "+messages.ConfigExpandPathFmt, errkind.ErrMalformed, path, err)
	}
	format, err := FormatFor(expanded)
	if err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return Settings{}, errkind.IOf(fmt.Sprintf(messages.ConfigReadFailedFmt, expanded), err)
	}
	return Parse(data, format, expanded)
}

// Parse decodes data over the defaults, rejects unknown keys, expands home
// directories, and validates the result. source names the input in errors.
func Parse(data []byte, format Format, source string) (Settings, error) {
	s := DefaultSettings()
	if err := decode(data, format, &s, false); err != nil {
		return Settings{}, fmt.Errorf("%w: "+messages.ConfigInvalidFmt, errkind.ErrMalformed, source, err)
	}
	var strict Settings
	if err := decode(data, format, &strict, true); err != nil {
		return Settings{}, invalid(messages.ConfigUnrecognizedKeysFmt, source, err)
	}
	if err := s.expandPaths(); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", source, err)
	}
	return s, nil
}

func decode(data []byte, format Format, v *Settings, strict bool) error {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		if strict {
			dec.DisallowUnknownFields()
		}
		return dec.Decode(v)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if strict {
			dec.DisallowUnknownFields()
		}
		return dec.Decode(v)
	default:
		return fmt.Errorf("unknown settings format %q", format)
	}
}

func (s *Settings) expandPaths() error {
	for _, p := range []*string{&s.OutputDir, &s.TargetFolder, &s.BackupPath, &s.LogFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("%w: "+messages.ConfigExpandPathFmt, errkind.ErrMalformed, *p, err)
		}
		*p = expanded
	}
	return nil
}
