package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/messages"
	"github.com/conn-castle/rigkit/internal/report"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// invalid wraps a validation failure so that it matches ErrConfigValidation and
// carries the malformed kind exactly once.
func invalid(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if errors.Is(err, errkind.ErrMalformed) {
		return fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return fmt.Errorf("%w: %w: %w", errkind.ErrMalformed, ErrConfigValidation, err)
}

// Validate checks every key that has a constrained range. The bone rule and
// angles are checked by the run itself, after the hierarchy dump is written.
func (s Settings) Validate() error {
	if _, err := report.ParseFormat(s.ReportFormat); err != nil {
		return invalid("%w", err)
	}
	if s.MaxDepth < 0 {
		return invalid(messages.ConfigMaxDepthNegativeFmt, s.MaxDepth)
	}
	if _, ok := validLogLevels[strings.ToLower(s.LogLevel)]; !ok {
		return invalid(messages.ConfigLogLevelInvalidFmt, s.LogLevel)
	}
	if s.BackupRetentionDays < 0 {
		return invalid(messages.ConfigRetentionNegativeFmt, s.BackupRetentionDays)
	}
	if err := s.Material().Validate(); err != nil {
		return invalid("%w", err)
	}
	return nil
}
