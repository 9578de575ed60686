package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/natefinch/atomic"

	"github.com/ziadkadry99/proposal-engine/internal/api"
	"github.com/ziadkadry99/proposal-engine/internal/session"
)

// handleListPages lists the pages of the workspace.
func (s *Server) handleListPages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.engine.Pages()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing pages: %v", err)), nil
	}
	if len(pages) == 0 {
		return mcp.NewToolResultText("The proposal has no editable pages."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d page(s):\n", len(pages)))
	for _, p := range pages {
		state := "enabled"
		if !p.Enabled {
			state = "disabled"
		}
		title := p.Title
		if title == "" {
			title = "(untitled)"
		}
		sb.WriteString(fmt.Sprintf("[%d] %s (%s, %d block(s))\n", p.Index, title, state, p.Blocks))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSetPageEnabled toggles whether a page is exported.
func (s *Server) handleSetPageEnabled(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: index"), nil
	}
	enabled, err := request.RequireBool("enabled")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: enabled"), nil
	}

	if err := s.engine.SetPageEnabled(index, enabled); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Page %d enabled=%v.", index, enabled)), nil
}

// handleMovePage moves a page one step up or down.
func (s *Server) handleMovePage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: index"), nil
	}
	delta := 1
	switch request.GetString("direction", "") {
	case "up":
		delta = -1
	case "down":
	default:
		return mcp.NewToolResultError(`direction must be "up" or "down"`), nil
	}

	if err := s.engine.MovePage(index, delta); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved page %d to %d.", index, index+delta)), nil
}

// handleListBlocks lists the text blocks of one page.
func (s *Server) handleListBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := request.RequireInt("page")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: page"), nil
	}

	blocks, err := s.engine.Blocks(page)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(blocks) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Page %d has no text blocks.", page)), nil
	}

	var sb strings.Builder
	for i, b := range blocks {
		sb.WriteString(fmt.Sprintf("\n--- Block %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("ID: %s\nTitle: %s\n\n%s\n", b.ID, b.Title, b.Body))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSaveBlock replaces the text of a block.
func (s *Server) handleSaveBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: block_id"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}
	body, err := request.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: body"), nil
	}

	if err := s.engine.SaveBlock(id, title, body); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved block %s.", id)), nil
}

// handleExportProposal renders the proposal.
func (s *Server) handleExportProposal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := session.Fields{
		Recipient: request.GetString("recipient", ""),
		Proposer:  request.GetString("proposer", ""),
		Tel:       request.GetString("tel", ""),
		Email:     request.GetString("email", ""),
		NoEmail:   request.GetBool("no_email", false),
		Primary:   request.GetString("primary", ""),
		Accent:    request.GetString("accent", ""),
	}

	out, err := s.engine.Export(api.MergeFields(f, s.defaults), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}

	path := request.GetString("output_path", "")
	if path == "" {
		return mcp.NewToolResultText(out.HTML), nil
	}
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(out.HTML))); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("writing %s: %v", path, err)), nil
	}

	msg := fmt.Sprintf("Wrote %s (%d bytes).", path, len(out.HTML))
	if len(out.Warnings) > 0 {
		msg += "\nWarnings:\n- " + strings.Join(out.Warnings, "\n- ")
	}
	return mcp.NewToolResultText(msg), nil
}
