package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/proposal-engine/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing page, block and export tools over the configured workspace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			if !w.engine.HasTemplate() {
				fmt.Fprintf(os.Stderr, "Warning: workspace %s has no template yet; set template_path in %s.\n", w.cfg.WorkspaceDir, cfgFile)
			}

			// Set version from the cmd package variable.
			mcpserver.Version = Version

			fmt.Fprintf(os.Stderr, "proposal MCP server started on stdio (workspace=%s)\n", w.cfg.WorkspaceDir)

			srv := mcpserver.NewServer(w.engine, w.cfg.Fields())
			return srv.Serve()
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
