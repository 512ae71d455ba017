package batch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/hierarchy"
	"github.com/conn-castle/rigkit/internal/match"
	"github.com/conn-castle/rigkit/internal/physbone"
	"github.com/conn-castle/rigkit/internal/report"
)

// Mode selects how a missing component is handled.
type Mode string

// Modes.
const (
	// ModeValidate requires every matched bone to already carry the component.
	ModeValidate Mode = "validate"
	// ModeInstall adds the component where missing and writes install defaults.
	ModeInstall Mode = "install"
)

// Default option values.
const (
	DefaultRuleSource   = `\.\d+`
	DefaultMaxAngle     = 45.0
	DefaultInnerAngle   = 10.0
	DefaultHierarchyOut = "hierarchy_dump.txt"
	DefaultArmatureOut  = "armature_bones.txt"
)

// Options is the immutable configuration of one run. Build it once from parsed
// arguments; Run never modifies it.
type Options struct {
	// Root is the exact name of the node whose direct children are matched.
	Root string
	// RootPathContains keeps only root candidates whose path contains it.
	RootPathContains string
	// Rule selects bones among the root's direct children. When nil, the rule
	// is parsed from RuleKind and RuleSource after the hierarchy dump.
	Rule       match.Rule
	RuleKind   string
	RuleSource string
	Params     physbone.Parameters
	Mode   Mode

	Walk            hierarchy.WalkOptions
	AnalyzeArmature bool
	DryRun          bool

	// Output paths. An empty path skips that artifact.
	HierarchyOut string
	ArmatureOut  string
	ReportOut    string
	ReportFormat report.Format

	// Cancelled is polled once per matched bone.
	Cancelled func() bool
	// Progress receives (done, total) as bones are configured.
	Progress func(done int, total int)

	Now    func() time.Time
	Logger *slog.Logger
}

// DefaultOptions returns options carrying the documented defaults.
func DefaultOptions() Options {
	return Options{
		Rule:         match.MustPattern(DefaultRuleSource),
		Params:       physbone.Parameters{MaxAngle: DefaultMaxAngle, InnerAngle: DefaultInnerAngle},
		Mode:         ModeValidate,
		Walk:         hierarchy.WalkOptions{MaxDepth: hierarchy.DefaultMaxDepth},
		HierarchyOut: DefaultHierarchyOut,
		ReportFormat: report.FormatText,
	}
}

// resolve checks the options and returns a copy with Rule parsed.
func (o Options) resolve() (Options, error) {
	switch o.Mode {
	case ModeValidate, ModeInstall:
	default:
		return o, fmt.Errorf("%w: unknown mode %q", errkind.ErrMalformed, o.Mode)
	}
	if o.Rule == nil {
		if o.RuleKind == "" && o.RuleSource == "" {
			return o, fmt.Errorf("%w: no bone rule", errkind.ErrMalformed)
		}
		rule, err := match.Parse(o.RuleKind, o.RuleSource)
		if err != nil {
			return o, fmt.Errorf("bone rule: %w", err)
		}
		o.Rule = rule
	}
	return o, o.Params.Validate()
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}
