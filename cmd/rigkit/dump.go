package main

import (
	"github.com/spf13/cobra"

	"github.com/conn-castle/rigkit/internal/batch"
	"github.com/conn-castle/rigkit/internal/config"
	"github.com/conn-castle/rigkit/internal/messages"
	"github.com/conn-castle/rigkit/internal/scene"
)

func newDumpCmd() *cobra.Command {
	var flags dumpFlags
	cmd := &cobra.Command{
		Use:   messages.DumpUse,
		Short: messages.DumpShort,
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
			return runDump(cmd, sess, args[0])
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// runDump is a bones run with no root and no report: it stops after the dump
// and the optional armature analysis, which is the success path here.
func runDump(cmd *cobra.Command, sess *session, scenePath string) error {
	opts, err := sess.settings.BoneOptions(batch.ModeValidate)
	if err != nil {
		return err
	}
	opts.Root = ""
	opts.ReportOut = ""
	opts.Now = now
	opts.Logger = sess.log

	sc, err := scene.Load(sess.path(scenePath))
	if err != nil {
		return err
	}
	out := batch.Run(cmd.Context(), opts, sc)
	if out.State == batch.StateNoRootSpecified {
		if !sess.quiet {
			for _, path := range out.Artifacts {
				cmd.Printf(messages.BonesArtifactFmt, path)
			}
		}
		return nil
	}
	if err := printOutcome(cmd.OutOrStdout(), sess, out); err != nil {
		return err
	}
	return exitFor(out.Code)
}
