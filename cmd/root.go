package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proposal-engine/internal/config"
)

var (
	cfgFile   string
	workspace string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Edit and export HTML proposal documents",
	Long: `Proposal edits a paginated HTML proposal template: it toggles, reorders
and duplicates pages, edits text blocks, tables and icon groups, fills
image slots, and exports a single self-contained HTML file. It also runs
an editing server with live preview and an MCP server for AI agents.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.FileName, "config file path")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (overrides workspace_dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// logf prints a status line when --verbose is set.
func logf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
