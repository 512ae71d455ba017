package main

import (
	"github.com/spf13/pflag"

	"github.com/conn-castle/rigkit/internal/config"
	"github.com/conn-castle/rigkit/internal/messages"
)

const (
	flagDryRun     = "dry-run"
	flagOutputDir  = "output-dir"
	flagReportFmt  = "report-format"
	flagReportOut  = "report-out"
	flagRoot       = "root"
	flagRootPath   = "root-path"
	flagBoneRegex  = "bone-regex"
	flagRuleKind   = "rule"
	flagAngle      = "angle"
	flagInnerAngle = "inner-angle"
	flagHierarchy  = "hierarchy"
	flagMaxDepth   = "max-depth"
	flagDeep       = "deep"
	flagArmature   = "armature"
	flagComponents = "components"
)

// dumpFlags are shared by every command that writes a hierarchy dump.
type dumpFlags struct {
	outputDir  string
	hierarchy  string
	maxDepth   int
	deep       bool
	armature   bool
	components bool
}

func (f *dumpFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.outputDir, flagOutputDir, "", messages.FlagOutputDir)
	fs.StringVar(&f.hierarchy, flagHierarchy, "", messages.FlagHierarchy)
	fs.IntVar(&f.maxDepth, flagMaxDepth, 0, messages.FlagMaxDepth)
	fs.BoolVar(&f.deep, flagDeep, false, messages.FlagDeep)
	fs.BoolVar(&f.armature, flagArmature, false, messages.FlagArmature)
	fs.BoolVar(&f.components, flagComponents, false, messages.FlagComponents)
}

// apply copies only the flags the user set, so unset flags keep the value from
// the settings file or environment.
func (f *dumpFlags) apply(fs *pflag.FlagSet, s *config.Settings) {
	if fs.Changed(flagOutputDir) {
		s.OutputDir = f.outputDir
	}
	if fs.Changed(flagHierarchy) {
		s.HierarchyOut = f.hierarchy
	}
	if fs.Changed(flagMaxDepth) {
		s.MaxDepth = f.maxDepth
	}
	if fs.Changed(flagDeep) {
		s.DeepHierarchy = f.deep
	}
	if fs.Changed(flagArmature) {
		s.FindArmature = f.armature
	}
	if fs.Changed(flagComponents) {
		s.ShowBoneStructure = f.components
	}
}

// boneFlags select and configure bones.
type boneFlags struct {
	dumpFlags
	root       string
	rootPath   string
	boneRegex  string
	ruleKind   string
	angle      float64
	innerAngle float64
	reportFmt  string
	reportOut  string
	dryRun     bool
}

func (f *boneFlags) register(fs *pflag.FlagSet) {
	f.dumpFlags.register(fs)
	fs.StringVarP(&f.root, flagRoot, "r", "", messages.FlagRoot)
	fs.StringVar(&f.rootPath, flagRootPath, "", messages.FlagRootPath)
	fs.StringVar(&f.boneRegex, flagBoneRegex, "", messages.FlagBoneRegex)
	fs.StringVar(&f.ruleKind, flagRuleKind, "", messages.FlagRuleKind)
	fs.Float64Var(&f.angle, flagAngle, 0, messages.FlagAngle)
	fs.Float64Var(&f.innerAngle, flagInnerAngle, 0, messages.FlagInnerAngle)
	fs.StringVar(&f.reportFmt, flagReportFmt, "", messages.FlagReportFmt)
	fs.StringVar(&f.reportOut, flagReportOut, "", messages.FlagReportOut)
	fs.BoolVar(&f.dryRun, flagDryRun, false, messages.FlagDryRun)
}

func (f *boneFlags) apply(fs *pflag.FlagSet, s *config.Settings) {
	f.dumpFlags.apply(fs, s)
	if fs.Changed(flagRoot) {
		s.Root = f.root
	}
	if fs.Changed(flagRootPath) {
		s.RootPathContains = f.rootPath
	}
	if fs.Changed(flagBoneRegex) {
		s.BoneRegex = f.boneRegex
	}
	if fs.Changed(flagRuleKind) {
		s.BoneRule = f.ruleKind
	}
	if fs.Changed(flagAngle) {
		s.Angle = f.angle
	}
	if fs.Changed(flagInnerAngle) {
		s.InnerAngle = f.innerAngle
	}
	if fs.Changed(flagReportFmt) {
		s.ReportFormat = f.reportFmt
	}
	if fs.Changed(flagReportOut) {
		s.ReportOut = f.reportOut
	}
}
