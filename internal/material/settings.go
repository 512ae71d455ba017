// Package material converts model materials from the Standard shader family to a
// target toon shader, keeping checksummed backups that can be restored.
package material

import (
	"fmt"
	"strings"

	"github.com/conn-castle/rigkit/internal/errkind"
)

// Settings control scanning, conversion, and backups.
type Settings struct {
	TargetFolder           string
	EnableTransparency     bool
	CreateBackups          bool
	TargetShader           string
	AlphaThreshold         float64
	FileFilters            []string
	ExcludePatterns        []string
	TransparencyMode       int
	RenderQueue            int
	BackupPath             string
	AutoDetectTransparency bool
}

// Default settings.
const (
	DefaultTargetFolder     = "Assets/Models/"
	DefaultTargetShader     = "lilToon"
	DefaultAlphaThreshold   = 0.5
	DefaultTransparencyMode = 2
	DefaultRenderQueue      = 3000
	DefaultBackupPath       = "Backups/Materials/"
)

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		TargetFolder:           DefaultTargetFolder,
		EnableTransparency:     true,
		CreateBackups:          true,
		TargetShader:           DefaultTargetShader,
		AlphaThreshold:         DefaultAlphaThreshold,
		FileFilters:            []string{"*.model.yaml", "*.model.yml", "*.model.json"},
		ExcludePatterns:        []string{"_backup", "_temp"},
		TransparencyMode:       DefaultTransparencyMode,
		RenderQueue:            DefaultRenderQueue,
		BackupPath:             DefaultBackupPath,
		AutoDetectTransparency: true,
	}
}

// Validate checks ranges that would make conversion meaningless.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.TargetShader) == "" {
		return fmt.Errorf("%w: target shader is required", errkind.ErrMalformed)
	}
	if s.AlphaThreshold < 0 || s.AlphaThreshold > 1 {
		return fmt.Errorf("%w: alpha threshold %v outside [0, 1]", errkind.ErrMalformed, s.AlphaThreshold)
	}
	if len(s.FileFilters) == 0 {
		return fmt.Errorf("%w: at least one file filter is required", errkind.ErrMalformed)
	}
	return nil
}
