package material

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/report"
)

// SuccessThreshold is the share of files that must process for a batch to pass.
const SuccessThreshold = 0.95

// ReportKind names the report produced by ConvertAll.
const ReportKind = "materials"

// BatchOptions configure one conversion batch.
type BatchOptions struct {
	// Base resolves a relative Settings.TargetFolder.
	Base     string
	Settings Settings
	// DryRun converts in memory and writes neither assets nor backups.
	DryRun bool
	// Cancelled is polled once per model file.
	Cancelled func() bool
	Progress  func(done int, total int)
	Now       func() time.Time
	Logger    *slog.Logger
}

// FileResult is the outcome for one model descriptor.
type FileResult struct {
	Path           string
	Model          string
	MaterialsFound int
	Converted      int
	Transparent    int
	Materials      []string
	Err            error
	Elapsed        time.Duration
}

// BatchResult summarizes a conversion batch.
type BatchResult struct {
	Files       []FileResult
	Total       int
	Processed   int
	Failed      int
	SuccessRate float64
	OK          bool
	Err         error
	Report      *report.Report
}

// ConvertAll scans for model descriptors and converts their materials. Per-file
// and per-material errors are recorded and the batch continues. backups may be
// nil when backups are disabled or in a dry run.
func ConvertAll(ctx context.Context, opts BatchOptions, store *Store, backups *Backups) BatchResult {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rep := report.New(ReportKind, now())
	rep.Set("target_folder", opts.Settings.TargetFolder)
	rep.Set("target_shader", opts.Settings.TargetShader)
	if opts.DryRun {
		rep.Set("dry_run", "true")
	}
	res := BatchResult{Report: rep}

	fail := func(err error) BatchResult {
		res.Err = err
		rep.Fail("", err)
		log.Error("conversion batch failed", "error", err)
		return res
	}
	if err := opts.Settings.Validate(); err != nil {
		return fail(err)
	}
	if opts.Settings.CreateBackups && !opts.DryRun && backups == nil {
		return fail(fmt.Errorf("%w: backups enabled but no backup folder open", errkind.ErrPrecondition))
	}

	files, err := NewScanner(opts.Base, opts.Settings, log).Scan()
	if err != nil {
		return fail(err)
	}
	res.Total = len(files)
	rep.Count("files", len(files))
	if len(files) == 0 {
		log.Warn("no model files found", "folder", opts.Settings.TargetFolder)
		res.OK = true
		res.SuccessRate = 1
		rep.Set("success_rate", "1")
		return res
	}

	proc := &fileProcessor{
		store:     store,
		backups:   backups,
		converter: NewConverter(opts.Settings, log),
		settings:  opts.Settings,
		dryRun:    opts.DryRun,
		log:       log,
		rep:       rep,
	}
	for i, path := range files {
		if err := cancelled(ctx, opts.Cancelled); err != nil {
			res.Err = err
			rep.Fail("", err)
			log.Warn("conversion cancelled", "done", i, "total", len(files))
			break
		}
		log.Info("processing model", "index", i+1, "total", len(files), "file", filepath.Base(path))
		start := now()
		fr := proc.process(path)
		fr.Elapsed = now().Sub(start)
		res.Files = append(res.Files, fr)
		recordFile(rep, fr)
		if fr.Err != nil {
			res.Failed++
			log.Warn("model failed", "file", path, "error", fr.Err)
		} else {
			res.Processed++
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(files))
		}
	}

	res.SuccessRate = float64(res.Processed) / float64(res.Total)
	res.OK = res.Err == nil && res.SuccessRate >= SuccessThreshold
	rep.Set("success_rate", strconv.FormatFloat(res.SuccessRate, 'f', 4, 64))
	rep.Count("processed_files", res.Processed)
	rep.Count("failed_files", res.Failed)
	log.Info("conversion batch finished", "processed", res.Processed, "failed", res.Failed, "rate", res.SuccessRate)
	return res
}

func cancelled(ctx context.Context, poll func() bool) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", errkind.ErrCancelled, err)
		}
	}
	if poll != nil && poll() {
		return errkind.ErrCancelled
	}
	return nil
}

func recordFile(rep *report.Report, fr FileResult) {
	entry := report.Entry{
		Path:   fr.Path,
		Status: report.StatusOK,
		Fields: map[string]string{
			"materials_found":      strconv.Itoa(fr.MaterialsFound),
			"materials_converted":  strconv.Itoa(fr.Converted),
			"transparency_applied": strconv.Itoa(fr.Transparent),
			"materials":            strings.Join(fr.Materials, ", "),
		},
	}
	if fr.Err != nil {
		entry.Status = report.StatusFail
		entry.Message = fr.Err.Error()
		rep.Fail(fr.Path, fr.Err)
	}
	rep.Add(entry)
	rep.Count("converted_materials", fr.Converted)
	rep.Count("transparency_applied", fr.Transparent)
}

type fileProcessor struct {
	store     *Store
	backups   *Backups
	converter *Converter
	settings  Settings
	dryRun    bool
	log       *slog.Logger
	rep       *report.Report
}

func (p *fileProcessor) process(path string) (fr FileResult) {
	fr.Path = path
	defer func() {
		if r := recover(); r != nil {
			p.store.Discard()
			fr.Err = errkind.FromPanic(r)
		}
	}()

	model, err := p.store.LoadModel(path)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Model = model.Name
	fr.MaterialsFound = len(model.Materials)

	for _, matPath := range model.Materials {
		m, err := p.store.FindAssetAtPath(matPath)
		if err != nil {
			p.materialFailed(matPath, err)
			continue
		}
		fr.Materials = append(fr.Materials, m.Name)
		if ok, reason := p.converter.ShouldConvert(m); !ok {
			p.log.Debug("material skipped", "material", m.Name, "reason", reason)
			p.rep.Count("skipped_materials", 1)
			continue
		}
		if p.settings.CreateBackups && !p.dryRun {
			if _, err := p.backups.Backup(m.Name, p.store.Abs(matPath), path); err != nil {
				// Never overwrite a material that has no backup.
				p.materialFailed(matPath, err)
				continue
			}
			p.rep.Count("backups", 1)
		}
		conv := p.converter.Convert(m)
		if err := p.store.CreateAsset(conv.Material, matPath); err != nil {
			p.materialFailed(matPath, err)
			continue
		}
		fr.Converted++
		if conv.Transparent {
			fr.Transparent++
		}
	}

	if p.dryRun {
		p.store.Discard()
		return fr
	}
	if err := p.store.SaveAll(); err != nil {
		p.store.Discard()
		fr.Err = err
	}
	return fr
}

func (p *fileProcessor) materialFailed(path string, err error) {
	p.log.Warn("material failed", "path", path, "error", err)
	p.rep.Fail(path, err)
	p.rep.Count("failed_materials", 1)
}
