package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/rigkit/internal/batch"
	"github.com/conn-castle/rigkit/internal/config"
	"github.com/conn-castle/rigkit/internal/messages"
	"github.com/conn-castle/rigkit/internal/physbone"
	"github.com/conn-castle/rigkit/internal/report"
	"github.com/conn-castle/rigkit/internal/scene"
)

func newBonesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.BonesUse,
		Short: messages.BonesShort,
	}
	cmd.AddCommand(
		newBonesRunCmd(messages.BonesConfigureUse, messages.BonesConfigureShort, batch.ModeValidate),
		newBonesRunCmd(messages.BonesInstallUse, messages.BonesInstallShort, batch.ModeInstall),
		newBonesAuditCmd(),
	)
	return cmd
}

func newBonesRunCmd(use string, short string, mode batch.Mode) *cobra.Command {
	var flags boneFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, func(s *config.Settings) error {
				flags.apply(cmd.Flags(), s)
				return nil
			})
			if err != nil {
				return err
			}
			defer sess.close()
			return runBones(cmd, sess, args[0], mode, flags.dryRun)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func runBones(cmd *cobra.Command, sess *session, scenePath string, mode batch.Mode, dryRun bool) error {
	opts, err := sess.settings.BoneOptions(mode)
	if err != nil {
		return err
	}
	opts.DryRun = dryRun
	opts.Now = now
	opts.Logger = sess.log
	if !sess.quiet {
		errOut := cmd.ErrOrStderr()
		opts.Progress = func(done int, total int) {
			fmt.Fprintf(errOut, messages.BonesProgressFmt, done, total)
		}
	}

	sc, err := scene.Load(sess.path(scenePath))
	if err != nil {
		return err
	}
	out := batch.Run(cmd.Context(), opts, sc)
	if err := printOutcome(cmd.OutOrStdout(), sess, out); err != nil {
		return err
	}
	return exitFor(out.Code)
}

func newBonesAuditCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   messages.BonesAuditUse,
		Short: messages.BonesAuditShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, func(s *config.Settings) error {
				if cmd.Flags().Changed(flagReportFmt) {
					s.ReportFormat = format
				}
				return nil
			})
			if err != nil {
				return err
			}
			defer sess.close()

			sc, err := scene.Load(sess.path(args[0]))
			if err != nil {
				return err
			}
			result := physbone.Audit(sc)
			sess.log.Info("audit finished", "scanned", result.Scanned, "components", len(result.Entries), "issues", result.Issues())

			f, err := report.ParseFormat(sess.settings.ReportFormat)
			if err != nil {
				return err
			}
			if f == report.FormatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				writeAudit(cmd.OutOrStdout(), result, sess.color)
			}
			if result.Issues() > 0 {
				return exitFor(batch.CodeValidationFailed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, flagReportFmt, "", messages.FlagReportFmt)
	return cmd
}

// writeAudit lists each component with an OK or CHECK label and the reasons a
// component needs attention.
func writeAudit(w io.Writer, result physbone.AuditResult, useColor bool) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	for _, c := range []*color.Color{green, yellow} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	fmt.Fprintf(w, messages.AuditHeaderFmt, result.Scanned, len(result.Entries))
	for _, e := range result.Entries {
		label := green.Sprint(messages.AuditOKLabel)
		if !e.Hinge || !e.AngleInRange {
			label = yellow.Sprint(messages.AuditIssueLabel)
		}
		fmt.Fprintf(w, messages.AuditLineFmt, label, e.Path)
		fmt.Fprintf(w, messages.AuditDetailFmt, e.Config.LimitType, e.Config.MaxAngleX,
			e.Config.LimitRotation[0], e.Config.LimitRotation[1], e.Config.LimitRotation[2])
		if !e.Hinge {
			fmt.Fprintf(w, messages.AuditIssueSepFmt, messages.AuditIssueHinge)
		}
		if !e.AngleInRange {
			fmt.Fprintf(w, messages.AuditIssueSepFmt, messages.AuditIssueAngle)
		}
	}
	if n := result.Issues(); n > 0 {
		fmt.Fprintf(w, messages.AuditIssuesFmt, n)
		return
	}
	fmt.Fprintln(w, messages.AuditAllGood)
}
