package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/conn-castle/rigkit/internal/messages"
	"github.com/conn-castle/rigkit/internal/prompt"
)

// Seams replaced in tests.
var (
	getwd        = os.Getwd
	now          = time.Now
	newConfirmer = func() prompt.Confirmer { return prompt.NewHuh() }
)

const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagLogFile  = "log-file"
	flagQuiet    = "quiet"
	flagYes      = "yes"
	flagNoColor  = "no-color"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().BoolP("version", "v", false, messages.RootVersionFlag)

	pf := cmd.PersistentFlags()
	pf.String(flagConfig, "", messages.FlagConfig)
	pf.String(flagLogLevel, "", messages.FlagLogLevel)
	pf.String(flagLogFile, "", messages.FlagLogFile)
	pf.BoolP(flagQuiet, "q", false, messages.FlagQuiet)
	pf.BoolP(flagYes, "y", false, messages.FlagYes)
	pf.Bool(flagNoColor, false, messages.FlagNoColor)

	cmd.AddCommand(
		newDumpCmd(),
		newBonesCmd(),
		newMaterialsCmd(),
		newMcpCmd(),
	)
	return cmd
}
