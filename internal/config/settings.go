// Package config loads rigkit settings from TOML or JSON, applies RIGKIT_*
// environment overrides, and converts the result into run options.
package config

import (
	"path/filepath"
	"time"

	"github.com/conn-castle/rigkit/internal/batch"
	"github.com/conn-castle/rigkit/internal/hierarchy"
	"github.com/conn-castle/rigkit/internal/match"
	"github.com/conn-castle/rigkit/internal/material"
	"github.com/conn-castle/rigkit/internal/physbone"
	"github.com/conn-castle/rigkit/internal/report"
)

// Settings is the flat user configuration shared by every command. Keys use the
// camelCase names of the original JSON settings file.
type Settings struct {
	Root              string  `toml:"root" json:"root"`
	RootPathContains  string  `toml:"rootPathContains" json:"rootPathContains"`
	BoneRule          string  `toml:"boneRule" json:"boneRule"`
	BoneRegex         string  `toml:"boneRegex" json:"boneRegex"`
	Angle             float64 `toml:"angle" json:"angle"`
	InnerAngle        float64 `toml:"innerAngle" json:"innerAngle"`
	OutputDir         string  `toml:"outputDir" json:"outputDir"`
	HierarchyOut      string  `toml:"hierarchyOut" json:"hierarchyOut"`
	ArmatureOut       string  `toml:"armatureOut" json:"armatureOut"`
	ReportOut         string  `toml:"reportOut" json:"reportOut"`
	ReportFormat      string  `toml:"reportFormat" json:"reportFormat"`
	MaxDepth          int     `toml:"maxDepth" json:"maxDepth"`
	DeepHierarchy     bool    `toml:"deepHierarchy" json:"deepHierarchy"`
	FindArmature      bool    `toml:"findArmature" json:"findArmature"`
	ShowBoneStructure bool    `toml:"showBoneStructure" json:"showBoneStructure"`
	LogLevel          string  `toml:"logLevel" json:"logLevel"`
	LogFile           string  `toml:"logFile" json:"logFile"`

	TargetFolder           string   `toml:"targetFolder" json:"targetFolder"`
	EnableTransparency     bool     `toml:"enableTransparency" json:"enableTransparency"`
	CreateBackups          bool     `toml:"createBackups" json:"createBackups"`
	TargetShader           string   `toml:"targetShader" json:"targetShader"`
	AlphaThreshold         float64  `toml:"alphaThreshold" json:"alphaThreshold"`
	FileFilters            []string `toml:"fileFilters" json:"fileFilters"`
	ExcludePatterns        []string `toml:"excludePatterns" json:"excludePatterns"`
	TransparencyMode       int      `toml:"transparencyMode" json:"transparencyMode"`
	RenderQueue            int      `toml:"renderQueue" json:"renderQueue"`
	BackupPath             string   `toml:"backupPath" json:"backupPath"`
	AutoDetectTransparency bool     `toml:"autoDetectTransparency" json:"autoDetectTransparency"`
	BackupRetentionDays    int      `toml:"backupRetentionDays" json:"backupRetentionDays"`
}

// Defaults that are not owned by another package.
const (
	DefaultOutputDir           = "data/output"
	DefaultReportOut           = "physbone_report"
	DefaultMaterialReportOut   = "material_conversion_report"
	DefaultLogLevel            = "info"
	DefaultBackupRetentionDays = 30
)

// DefaultSettings returns the documented defaults. Root is empty: a bones run
// without a root only dumps the hierarchy.
func DefaultSettings() Settings {
	m := material.DefaultSettings()
	return Settings{
		BoneRule:     match.KindRegex,
		BoneRegex:    batch.DefaultRuleSource,
		Angle:        batch.DefaultMaxAngle,
		InnerAngle:   batch.DefaultInnerAngle,
		OutputDir:    DefaultOutputDir,
		HierarchyOut: batch.DefaultHierarchyOut,
		ArmatureOut:  batch.DefaultArmatureOut,
		ReportOut:    DefaultReportOut,
		ReportFormat: string(report.FormatText),
		MaxDepth:     hierarchy.DefaultMaxDepth,
		LogLevel:     DefaultLogLevel,

		TargetFolder:           m.TargetFolder,
		EnableTransparency:     m.EnableTransparency,
		CreateBackups:          m.CreateBackups,
		TargetShader:           m.TargetShader,
		AlphaThreshold:         m.AlphaThreshold,
		FileFilters:            m.FileFilters,
		ExcludePatterns:        m.ExcludePatterns,
		TransparencyMode:       m.TransparencyMode,
		RenderQueue:            m.RenderQueue,
		BackupPath:             m.BackupPath,
		AutoDetectTransparency: m.AutoDetectTransparency,
		BackupRetentionDays:    DefaultBackupRetentionDays,
	}
}

// OutputPath places name under OutputDir unless it is empty or absolute.
func (s Settings) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.OutputDir, name)
}

// Material converts the material keys into material.Settings.
func (s Settings) Material() material.Settings {
	return material.Settings{
		TargetFolder:           s.TargetFolder,
		EnableTransparency:     s.EnableTransparency,
		CreateBackups:          s.CreateBackups,
		TargetShader:           s.TargetShader,
		AlphaThreshold:         s.AlphaThreshold,
		FileFilters:            append([]string(nil), s.FileFilters...),
		ExcludePatterns:        append([]string(nil), s.ExcludePatterns...),
		TransparencyMode:       s.TransparencyMode,
		RenderQueue:            s.RenderQueue,
		BackupPath:             s.BackupPath,
		AutoDetectTransparency: s.AutoDetectTransparency,
	}
}

// BackupRetention is the prune age as a duration.
func (s Settings) BackupRetention() time.Duration {
	return time.Duration(s.BackupRetentionDays) * 24 * time.Hour
}

// ReportPath is the report file for the given base name, with the extension of
// the configured format.
func (s Settings) ReportPath(base string) (string, report.Format, error) {
	format, err := report.ParseFormat(s.ReportFormat)
	if err != nil {
		return "", "", err
	}
	if base == "" {
		return "", format, nil
	}
	return s.OutputPath(base + format.Extension()), format, nil
}

// BoneOptions builds the immutable options of a bones run in mode. The rule
// and angles are passed through unchecked; the run rejects them after the
// hierarchy dump.
func (s Settings) BoneOptions(mode batch.Mode) (batch.Options, error) {
	opts := batch.DefaultOptions()
	reportOut, format, err := s.ReportPath(s.ReportOut)
	if err != nil {
		return batch.Options{}, err
	}
	opts.Root = s.Root
	opts.RootPathContains = s.RootPathContains
	opts.Rule = nil
	opts.RuleKind = s.BoneRule
	opts.RuleSource = s.BoneRegex
	opts.Params = physbone.Parameters{MaxAngle: s.Angle, InnerAngle: s.InnerAngle}
	opts.Mode = mode
	opts.Walk = hierarchy.WalkOptions{MaxDepth: s.MaxDepth, IncludeComponents: s.ShowBoneStructure}
	if s.DeepHierarchy {
		opts.Walk.MaxDepth = hierarchy.Unlimited
	}
	opts.AnalyzeArmature = s.FindArmature
	opts.HierarchyOut = s.OutputPath(s.HierarchyOut)
	if s.FindArmature {
		opts.ArmatureOut = s.OutputPath(s.ArmatureOut)
	}
	opts.ReportOut = reportOut
	opts.ReportFormat = format
	return opts, nil
}
