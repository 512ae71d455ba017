package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/conn-castle/rigkit/internal/armature"
	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/fsutil"
	"github.com/conn-castle/rigkit/internal/hierarchy"
	"github.com/conn-castle/rigkit/internal/physbone"
	"github.com/conn-castle/rigkit/internal/report"
)

// Host is the scene a run operates on.
type Host interface {
	physbone.Host
	SceneName() string
	SaveAll() error
}

// Differ is implemented by hosts that can preview pending changes.
type Differ interface {
	Diff() (string, error)
}

// ReportKind names the report produced by Run.
const ReportKind = "bones"

// Outcome is the explicit result of a run. Code is what the CLI exits with.
type Outcome struct {
	State   State
	Kind    errkind.Kind
	Err     error
	Code    int
	Trace   []State
	Root    string
	Bones   []string
	Applied physbone.Applied
	Report  *report.Report
	// Diff holds the pending scene changes of a dry run.
	Diff      string
	Artifacts []string
}

// OK reports whether the run reached Done.
func (o Outcome) OK() bool {
	return o.State == StateDone
}

type runner struct {
	ctx  context.Context
	opts Options
	host Host
	log  *slog.Logger
	out  Outcome
}

// Run executes one batch against host. It never panics; a panic inside the run
// is converted to an UnexpectedError outcome.
func Run(ctx context.Context, opts Options, host Host) (out Outcome) {
	r := &runner{ctx: ctx, opts: opts, host: host, log: opts.logger()}
	r.out.Report = report.New(ReportKind, opts.now())
	r.enter(StateInit)

	defer func() {
		if rec := recover(); rec != nil {
			out = r.finish(StateUnexpectedError, errkind.FromPanic(rec))
		}
	}()
	return r.run()
}

func (r *runner) run() Outcome {
	rep := r.out.Report
	rep.Set("scene", r.host.SceneName())
	rep.Set("mode", string(r.opts.Mode))
	rep.Set("root", r.opts.Root)
	if r.opts.Rule != nil {
		rep.Set("rule", r.opts.Rule.String())
	} else if r.opts.RuleSource != "" {
		rep.Set("rule", r.opts.RuleSource)
	}
	rep.Set("max_angle", formatFloat(r.opts.Params.MaxAngle))
	rep.Set("inner_angle", formatFloat(r.opts.Params.InnerAngle))
	if r.opts.DryRun {
		rep.Set("dry_run", "true")
	}

	// The dump runs before anything can fail so every run leaves a diagnostic.
	if err := r.dumpHierarchy(); err != nil {
		return r.finish(StateUnexpectedError, err)
	}
	r.enter(StateHierarchyDumped)

	opts, err := r.opts.resolve()
	if err != nil {
		return r.finish(StateUnexpectedError, err)
	}
	r.opts = opts
	rep.Set("rule", opts.Rule.String())

	if r.opts.AnalyzeArmature {
		if err := r.analyzeArmature(); err != nil {
			return r.finish(StateUnexpectedError, err)
		}
		r.enter(StateArmatureAnalyzed)
	}

	if strings.TrimSpace(r.opts.Root) == "" {
		r.log.Info("no root specified, hierarchy dump only")
		return r.finish(StateNoRootSpecified, nil)
	}

	root, err := r.resolveRoot()
	if err != nil {
		return r.finish(StateRootNotFound, err)
	}
	r.out.Root = hierarchy.Resolve(r.host, root)
	r.enter(StateRootResolved)

	bones := hierarchy.CollectMatching(r.host, root, r.opts.Rule)
	if len(bones) == 0 {
		err := fmt.Errorf("%w: no children of %s match %s", errkind.ErrNotFound, r.out.Root, r.opts.Rule)
		return r.finish(StateNoBonesMatched, err)
	}
	for _, id := range bones {
		r.out.Bones = append(r.out.Bones, hierarchy.Resolve(r.host, id))
	}
	rep.Count("matched", len(bones))
	r.log.Info("matched bones", "root", r.out.Root, "count", len(bones), "bones", r.out.Bones)
	r.enter(StateBonesMatched)

	if err := r.checkCancelled(); err != nil {
		return r.finish(StateCancelled, err)
	}

	applier := physbone.NewApplier(r.host, r.log)
	applier.SetCheckpoint(r.checkpoint)

	var applied physbone.Applied
	switch r.opts.Mode {
	case ModeInstall:
		applied, err = applier.Install(bones, r.opts.Params)
		if err == nil {
			r.enter(StateComponentsInstalled)
		}
	default:
		if verr := applier.Validate(bones); verr != nil {
			r.recordMissing(verr)
			return r.finish(StateValidationFailed, verr)
		}
		r.enter(StateValidated)
		applied, err = applier.ApplyValidated(bones, r.opts.Params)
	}
	r.out.Applied = applied
	r.recordApplied(applied)
	if err != nil {
		if errors.Is(err, errkind.ErrCancelled) {
			return r.finish(StateCancelled, err)
		}
		if errors.Is(err, errkind.ErrPrecondition) {
			return r.finish(StateValidationFailed, err)
		}
		return r.finish(StateUnexpectedError, err)
	}
	if applied.Count == 0 && len(applied.Failures) > 0 {
		return r.finish(StateUnexpectedError, fmt.Errorf("no bone configured: %w", applied.Failures[0].Err))
	}
	r.enter(StateConfigured)

	if err := r.persist(); err != nil {
		return r.finish(StateUnexpectedError, err)
	}
	r.enter(StatePersisted)

	return r.finish(StateDone, nil)
}

func (r *runner) enter(s State) {
	r.out.Trace = append(r.out.Trace, s)
	r.log.Debug("batch state", "state", s)
}

// finish records the terminal state, writes the report, and sets the code. A
// report write failure on an otherwise successful run turns it into an
// UnexpectedError; mutations already persisted stay persisted.
func (r *runner) finish(s State, err error) Outcome {
	rep := r.out.Report
	if err != nil {
		rep.Fail(r.out.Root, err)
		r.log.Error("batch stopped", "state", s, "error", err)
	}
	rep.Set("state", string(s))
	rep.Set("exit_code", strconv.Itoa(CodeFor(s)))

	if werr := r.writeReport(); werr != nil {
		r.log.Error("write report failed", "path", r.opts.ReportOut, "error", werr)
		if err == nil {
			s, err = StateUnexpectedError, werr
		}
	} else if r.opts.ReportOut != "" {
		r.enter(StateReported)
	}

	r.out.State = s
	r.out.Err = err
	r.out.Kind = errkind.Classify(err)
	r.out.Code = CodeFor(s)
	r.enter(s)
	r.log.Info("batch finished", "state", s, "code", r.out.Code)
	return r.out
}

func (r *runner) checkCancelled() error {
	if r.ctx != nil {
		if err := r.ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", errkind.ErrCancelled, err)
		}
	}
	if r.opts.Cancelled != nil && r.opts.Cancelled() {
		return errkind.ErrCancelled
	}
	return nil
}

func (r *runner) checkpoint(done int, total int) error {
	if r.opts.Progress != nil {
		r.opts.Progress(done, total)
	}
	if done == total {
		return nil
	}
	return r.checkCancelled()
}

func (r *runner) dumpHierarchy() error {
	walk := hierarchy.Walk(r.host, r.opts.Walk)
	r.out.Report.Count("nodes", len(walk.Entries))
	r.log.Info("hierarchy scanned", "nodes", len(walk.Entries), "truncated", walk.TruncatedCount(), "cycles", walk.CyclesSkipped)
	if r.opts.HierarchyOut == "" {
		return nil
	}
	var buf bytes.Buffer
	err := report.WriteDump(&buf, report.Dump{
		SceneName: r.host.SceneName(),
		Generated: r.out.Report.Generated,
		RootCount: len(r.host.Roots()),
		Walk:      walk,
	})
	if err != nil {
		return err
	}
	return r.writeArtifact(r.opts.HierarchyOut, buf.Bytes())
}

func (r *runner) analyzeArmature() error {
	analysis := armature.Analyze(r.host)
	r.out.Report.Count("armatures", len(analysis.Armatures))
	r.log.Info("armature analysis", "armatures", len(analysis.Armatures), "bones", len(analysis.Bones))
	if r.opts.ArmatureOut == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := analysis.WriteText(&buf, r.host.SceneName(), r.out.Report.Generated); err != nil {
		return err
	}
	return r.writeArtifact(r.opts.ArmatureOut, buf.Bytes())
}

// resolveRoot picks the root by exact name. With RootPathContains set, only
// candidates whose path contains it qualify; the first qualifying candidate wins
// and every other candidate is reported as skipped.
func (r *runner) resolveRoot() (hierarchy.NodeID, error) {
	candidates := hierarchy.FindByName(r.host, r.opts.Root)
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: root %q", errkind.ErrNotFound, r.opts.Root)
	}
	var chosen hierarchy.NodeID
	found := false
	for _, id := range candidates {
		path := hierarchy.Resolve(r.host, id)
		r.log.Debug("root candidate", "path", path)
		if found || !strings.Contains(path, r.opts.RootPathContains) {
			r.out.Report.Add(report.Entry{Path: path, Status: report.StatusSkipped, Message: "not the selected root"})
			continue
		}
		chosen, found = id, true
	}
	if !found {
		return 0, fmt.Errorf("%w: root %q with path containing %q", errkind.ErrNotFound, r.opts.Root, r.opts.RootPathContains)
	}
	return chosen, nil
}

func (r *runner) recordMissing(err error) {
	var pre *physbone.PreconditionError
	if !errors.As(err, &pre) {
		return
	}
	for _, path := range pre.Missing {
		r.out.Report.Add(report.Entry{
			Path:    path,
			Status:  report.StatusFail,
			Message: "missing " + physbone.ComponentType,
		})
	}
}

func (r *runner) recordApplied(applied physbone.Applied) {
	rep := r.out.Report
	for _, res := range applied.Results {
		entry := report.Entry{
			Path:   res.Path,
			Status: report.StatusOK,
			Fields: map[string]string{
				"max_angle": formatFloat(res.Parameter.MaxAngle),
				"limit_x":   formatFloat(res.Parameter.SecondaryLimit()),
				"roll":      formatFloat(res.Parameter.DerivedRoll),
				"changes":   strconv.Itoa(len(res.Changes)),
			},
		}
		if res.Leaf != "" {
			entry.Fields["leaf"] = res.Leaf
		}
		if res.Added {
			entry.Fields["added"] = "true"
			rep.Count("added", 1)
		}
		if res.Warning != "" {
			entry.Status = report.StatusWarn
			entry.Message = res.Warning
		}
		rep.Add(entry)
		rep.Count("changes", len(res.Changes))
	}
	for _, f := range applied.Failures {
		rep.Add(report.Entry{Path: f.Path, Status: report.StatusFail, Message: f.Err.Error()})
		rep.Fail(f.Path, f.Err)
	}
}

func (r *runner) persist() error {
	if r.opts.DryRun {
		if d, ok := r.host.(Differ); ok {
			diff, err := d.Diff()
			if err != nil {
				return err
			}
			r.out.Diff = diff
		}
		r.log.Info("dry run, scene not saved")
		return nil
	}
	if err := r.host.SaveAll(); err != nil {
		return errkind.IOf("save scene", err)
	}
	r.log.Info("scene saved")
	return nil
}

func (r *runner) writeReport() error {
	if r.opts.ReportOut == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, r.out.Report, r.opts.ReportFormat, report.TextOptions{}); err != nil {
		return err
	}
	return r.writeArtifact(r.opts.ReportOut, buf.Bytes())
}

func (r *runner) writeArtifact(path string, data []byte) error {
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return errkind.IOf("write "+path, err)
	}
	r.out.Artifacts = append(r.out.Artifacts, path)
	r.log.Info("wrote artifact", "path", path)
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
