package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/proposal-engine/internal/session"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes proposal editing tools for one
// workspace.
type Server struct {
	engine   *session.Engine
	defaults session.Fields
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server editing the given workspace. defaults
// fill export fields a tool call leaves empty.
func NewServer(engine *session.Engine, defaults session.Fields) *Server {
	s := &Server{
		engine:   engine,
		defaults: defaults,
	}

	s.mcp = server.NewMCPServer(
		"proposal",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listPagesTool, s.handleListPages)
	s.mcp.AddTool(setPageEnabledTool, s.handleSetPageEnabled)
	s.mcp.AddTool(movePageTool, s.handleMovePage)
	s.mcp.AddTool(listBlocksTool, s.handleListBlocks)
	s.mcp.AddTool(saveBlockTool, s.handleSaveBlock)
	s.mcp.AddTool(exportProposalTool, s.handleExportProposal)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
