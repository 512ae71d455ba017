package main

import (
	"github.com/spf13/cobra"

	"github.com/conn-castle/rigkit/internal/mcp"
	"github.com/conn-castle/rigkit/internal/messages"
)

var runMCPServer = mcp.Run

func newMcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.McpUse,
		Short: messages.McpShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd, nil)
			if err != nil {
				return err
			}
			defer sess.close()
			return runMCPServer(cmd.Context(), mcp.Options{
				Version:  versionString(),
				BaseDir:  sess.dir,
				Settings: sess.settings,
				Now:      now,
				Logger:   sess.log,
			})
		},
	}
}
