package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conn-castle/rigkit/internal/batch"
	"github.com/conn-castle/rigkit/internal/config"
	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/fsutil"
	"github.com/conn-castle/rigkit/internal/material"
	"github.com/conn-castle/rigkit/internal/messages"
	"github.com/conn-castle/rigkit/internal/prompt"
	"github.com/conn-castle/rigkit/internal/report"
)

// materialFlags locate the project and its folders.
type materialFlags struct {
	project      string
	targetFolder string
	targetShader string
	backupPath   string
}

const (
	flagProject      = "project"
	flagTargetFolder = "target-folder"
	flagTargetShader = "target-shader"
	flagBackupPath   = "backup-path"
	flagNoBackups    = "no-backups"
	flagOlderThan    = "older-than"
	flagStale        = "stale"
)

func (f *materialFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.project, flagProject, "p", "", messages.FlagProject)
	fs.StringVar(&f.targetFolder, flagTargetFolder, "", messages.FlagTargetFolder)
	fs.StringVar(&f.targetShader, flagTargetShader, "", messages.FlagTargetShader)
	fs.StringVar(&f.backupPath, flagBackupPath, "", messages.FlagBackupPath)
}

func (f *materialFlags) apply(fs *pflag.FlagSet, s *config.Settings) {
	if fs.Changed(flagTargetFolder) {
		s.TargetFolder = f.targetFolder
	}
	if fs.Changed(flagTargetShader) {
		s.TargetShader = f.targetShader
	}
	if fs.Changed(flagBackupPath) {
		s.BackupPath = f.backupPath
	}
}

// base is the project directory relative folders resolve against.
func (f *materialFlags) base(sess *session) string {
	if f.project == "" {
		return sess.dir
	}
	return sess.path(f.project)
}

func backupDir(base string, s config.Settings) string {
	if filepath.IsAbs(s.BackupPath) {
		return s.BackupPath
	}
	return filepath.Join(base, s.BackupPath)
}

func openBackups(sess *session, base string) (*material.Backups, error) {
	return material.OpenBackups(backupDir(base, sess.settings), sess.log, now)
}

func newMaterialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.MaterialsUse,
		Short: messages.MaterialsShort,
	}
	cmd.AddCommand(
		newMaterialsConvertCmd(),
		newMaterialsRestoreCmd(),
		newMaterialsRestoreAllCmd(),
		newMaterialsListCmd(),
		newMaterialsPruneCmd(),
	)
	return cmd
}

// materialSession opens a session with the material flags applied.
func materialSession(cmd *cobra.Command, flags *materialFlags, extra func(s *config.Settings)) (*session, error) {
	return openSession(cmd, func(s *config.Settings) error {
		flags.apply(cmd.Flags(), s)
		if extra != nil {
			extra(s)
		}
		return nil
	})
}

// declined prints the abort notice and maps the answer to an exit. A prompt
// that cannot be shown is returned as an error.
func declined(cmd *cobra.Command, ok bool, err error) (bool, error) {
	if err != nil {
		if errors.Is(err, prompt.ErrRequiresTerminal) {
			return true, fmt.Errorf("%w: %w", errkind.ErrPrecondition, err)
		}
		return true, err
	}
	if !ok {
		cmd.PrintErrln(messages.PromptDeclined)
		return true, exitFor(batch.CodeCancelled)
	}
	return false, nil
}

func newMaterialsConvertCmd() *cobra.Command {
	var (
		flags     materialFlags
		dryRun    bool
		noBackups bool
		reportFmt string
		reportOut string
	)
	cmd := &cobra.Command{
		Use:   messages.MaterialsConvertUse,
		Short: messages.MaterialsConvertShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := materialSession(cmd, &flags, func(s *config.Settings) {
				if noBackups {
					s.CreateBackups = false
				}
				if cmd.Flags().Changed(flagReportFmt) {
					s.ReportFormat = reportFmt
				}
			})
			if err != nil {
				return err
			}
			defer sess.close()
			base := flags.base(sess)

			if !sess.settings.CreateBackups && !dryRun {
				ok, err := sess.confirm(fmt.Sprintf(messages.MaterialsConfirmConvert, sess.settings.TargetFolder))
				if stop, err := declined(cmd, ok, err); stop {
					return err
				}
			}

			var backups *material.Backups
			if sess.settings.CreateBackups && !dryRun {
				if backups, err = openBackups(sess, base); err != nil {
					return err
				}
			}

			opts := material.BatchOptions{
				Base:     base,
				Settings: sess.settings.Material(),
				DryRun:   dryRun,
				Now:      now,
				Logger:   sess.log,
			}
			if !sess.quiet {
				errOut := cmd.ErrOrStderr()
				opts.Progress = func(done int, total int) {
					fmt.Fprintf(errOut, messages.MaterialsProgressFmt, done, total)
				}
			}
			res := material.ConvertAll(cmd.Context(), opts, material.NewStore(base, sess.log), backups)

			written, werr := writeMaterialReport(sess, res.Report, reportOut)
			printConversion(cmd.OutOrStdout(), sess, res, written)
			code := conversionCode(res)
			if werr != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), messages.MaterialsErrorFmt, errkind.Classify(werr), werr)
				if code == batch.CodeSuccess {
					code = batch.CodeUnexpected
				}
			}
			return exitFor(code)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&dryRun, flagDryRun, false, messages.FlagDryRun)
	cmd.Flags().BoolVar(&noBackups, flagNoBackups, false, messages.FlagNoBackups)
	cmd.Flags().StringVar(&reportFmt, flagReportFmt, "", messages.FlagReportFmt)
	cmd.Flags().StringVar(&reportOut, flagReportOut, config.DefaultMaterialReportOut, messages.FlagReportOut)
	return cmd
}

// conversionCode maps a batch result onto the shared exit codes. A batch that
// ran but fell under the success threshold is unexpected.
func conversionCode(res material.BatchResult) int {
	if res.Err != nil {
		return batch.CodeForKind(errkind.Classify(res.Err))
	}
	if !res.OK {
		return batch.CodeUnexpected
	}
	return batch.CodeSuccess
}

func writeMaterialReport(sess *session, rep *report.Report, base string) (string, error) {
	path, format, err := sess.settings.ReportPath(base)
	if err != nil || path == "" {
		return "", err
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, rep, format, report.TextOptions{}); err != nil {
		return "", err
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", errkind.IOf("write "+path, err)
	}
	sess.log.Info("wrote artifact", "path", path)
	return path, nil
}

func printConversion(w io.Writer, sess *session, res material.BatchResult, reportPath string) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	for _, c := range []*color.Color{green, red} {
		if sess.color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	if res.Err != nil {
		_, _ = red.Fprintf(w, messages.MaterialsErrorFmt, errkind.Classify(res.Err), res.Err)
	}
	if sess.quiet {
		return
	}
	if res.Total == 0 && res.Err == nil {
		fmt.Fprintln(w, messages.MaterialsNoFiles)
	}
	for _, fr := range res.Files {
		label := green.Sprint(messages.ReportStatusOKLabel)
		if fr.Err != nil {
			label = red.Sprint(messages.ReportStatusFailLabel)
		}
		fmt.Fprintf(w, messages.MaterialsFileFmt, label, filepath.Base(fr.Path), fr.Converted, fr.MaterialsFound, fr.Transparent)
	}
	if res.Total > 0 {
		fmt.Fprintf(w, messages.MaterialsSummaryFmt, res.Processed, res.Total, res.SuccessRate*100, res.Failed)
	}
	if reportPath != "" {
		fmt.Fprintf(w, messages.MaterialsReportFmt, reportPath)
	}
}

func newMaterialsRestoreCmd() *cobra.Command {
	var flags materialFlags
	cmd := &cobra.Command{
		Use:   messages.MaterialsRestoreUse,
		Short: messages.MaterialsRestoreShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := materialSession(cmd, &flags, nil)
			if err != nil {
				return err
			}
			defer sess.close()
			backups, err := openBackups(sess, flags.base(sess))
			if err != nil {
				return err
			}
			entry, ok := backups.Find(args[0])
			if err := backups.Restore(args[0]); err != nil {
				return err
			}
			if ok && !sess.quiet {
				cmd.Printf(messages.MaterialsRestoredFmt, entry.MaterialName, entry.OriginalPath)
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newMaterialsRestoreAllCmd() *cobra.Command {
	var flags materialFlags
	cmd := &cobra.Command{
		Use:   messages.MaterialsRestoreAllUse,
		Short: messages.MaterialsRestoreAllShrt,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := materialSession(cmd, &flags, nil)
			if err != nil {
				return err
			}
			defer sess.close()
			backups, err := openBackups(sess, flags.base(sess))
			if err != nil {
				return err
			}
			entries := backups.Entries()
			if len(entries) == 0 {
				cmd.Println(messages.MaterialsNoBackups)
				return nil
			}
			ok, err := sess.confirm(fmt.Sprintf(messages.MaterialsConfirmRestore, len(entries)))
			if stop, err := declined(cmd, ok, err); stop {
				return err
			}

			summary := backups.RestoreAll()
			cmd.Printf(messages.MaterialsRestoreAllFmt, summary.Restored, summary.Total)
			for _, f := range summary.Failures {
				cmd.PrintErrf(messages.MaterialsRestoreFailFmt, f.Entry.MaterialName, f.Err)
			}
			if !summary.Complete() {
				return exitFor(batch.CodeUnexpected)
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newMaterialsListCmd() *cobra.Command {
	var flags materialFlags
	cmd := &cobra.Command{
		Use:   messages.MaterialsListUse,
		Short: messages.MaterialsListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := materialSession(cmd, &flags, nil)
			if err != nil {
				return err
			}
			defer sess.close()
			backups, err := openBackups(sess, flags.base(sess))
			if err != nil {
				return err
			}
			entries := backups.Entries()
			if len(entries) == 0 {
				cmd.Println(messages.MaterialsNoBackups)
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, messages.MaterialsBackupHeader)
			for _, e := range entries {
				fmt.Fprintf(tw, messages.MaterialsBackupRowFmt, e.MaterialName, e.Timestamp.Format(time.RFC3339), e.BackupPath, e.OriginalPath)
			}
			return tw.Flush()
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newMaterialsPruneCmd() *cobra.Command {
	var (
		flags     materialFlags
		olderThan int
		stale     bool
	)
	cmd := &cobra.Command{
		Use:   messages.MaterialsPruneUse,
		Short: messages.MaterialsPruneShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := materialSession(cmd, &flags, func(s *config.Settings) {
				if cmd.Flags().Changed(flagOlderThan) {
					s.BackupRetentionDays = olderThan
				}
			})
			if err != nil {
				return err
			}
			defer sess.close()
			backups, err := openBackups(sess, flags.base(sess))
			if err != nil {
				return err
			}

			title := fmt.Sprintf(messages.MaterialsConfirmPruneFmt, sess.settings.BackupRetentionDays)
			if stale {
				title = messages.MaterialsConfirmStale
			}
			ok, err := sess.confirm(title)
			if stop, err := declined(cmd, ok, err); stop {
				return err
			}

			var removed int
			if stale {
				removed, err = backups.PruneStale()
			} else {
				removed, err = backups.Prune(sess.settings.BackupRetention())
			}
			cmd.Printf(messages.MaterialsPrunedFmt, removed)
			return err
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().IntVar(&olderThan, flagOlderThan, 0, messages.FlagOlderThan)
	cmd.Flags().BoolVar(&stale, flagStale, false, messages.FlagStale)
	return cmd
}
