// ABOUTME: Root CLI command with global flags
// ABOUTME: Wires all subcommands and handles execution
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applebridge",
		Short: "MCP bridge to macOS apps, web research, and the Messages store",
		Long: `applebridge exposes macOS applications and a web research pipeline
to AI agents over the Model Context Protocol.

Run the MCP server for agent use, or call the research and messages
commands directly from the terminal.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewResearchCmd())
	cmd.AddCommand(NewMessagesCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
