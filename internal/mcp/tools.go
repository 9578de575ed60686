package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listPagesTool defines the list_pages MCP tool.
var listPagesTool = mcp.NewTool("list_pages",
	mcp.WithDescription("List the pages of the proposal with their index, title, enabled flag and number of text blocks."),
)

// setPageEnabledTool defines the set_page_enabled MCP tool.
var setPageEnabledTool = mcp.NewTool("set_page_enabled",
	mcp.WithDescription("Include or exclude a page from the exported proposal."),
	mcp.WithNumber("index",
		mcp.Required(),
		mcp.Description("Zero-based page index as returned by list_pages"),
	),
	mcp.WithBoolean("enabled",
		mcp.Required(),
		mcp.Description("Whether the page is exported"),
	),
)

// movePageTool defines the move_page MCP tool.
var movePageTool = mcp.NewTool("move_page",
	mcp.WithDescription("Swap a page with its previous or next neighbour."),
	mcp.WithNumber("index",
		mcp.Required(),
		mcp.Description("Zero-based page index"),
	),
	mcp.WithString("direction",
		mcp.Required(),
		mcp.Description("Direction to move the page"),
		mcp.Enum("up", "down"),
	),
)

// listBlocksTool defines the list_blocks MCP tool.
var listBlocksTool = mcp.NewTool("list_blocks",
	mcp.WithDescription("List the editable text blocks of a page. Bodies are plain text: one line per paragraph, list items start with \"- \"."),
	mcp.WithNumber("page",
		mcp.Required(),
		mcp.Description("Zero-based page index"),
	),
)

// saveBlockTool defines the save_block MCP tool.
var saveBlockTool = mcp.NewTool("save_block",
	mcp.WithDescription("Replace the title and body of a text block."),
	mcp.WithString("block_id",
		mcp.Required(),
		mcp.Description("Block id as returned by list_blocks"),
	),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("New block title"),
	),
	mcp.WithString("body",
		mcp.Required(),
		mcp.Description("New body text. Lines starting with \"- \" become list items."),
	),
)

// exportProposalTool defines the export_proposal MCP tool.
var exportProposalTool = mcp.NewTool("export_proposal",
	mcp.WithDescription("Render the self-contained proposal HTML with the given fields. Writes it to output_path when given, otherwise returns it."),
	mcp.WithString("recipient", mcp.Description("Receiving organisation")),
	mcp.WithString("proposer", mcp.Description("Proposing organisation")),
	mcp.WithString("tel", mcp.Description("Contact phone number")),
	mcp.WithString("email", mcp.Description("Contact email; empty uses the configured default")),
	mcp.WithBoolean("no_email", mcp.Description("Remove the email line from the proposal")),
	mcp.WithString("primary", mcp.Description("Primary theme colour as #rrggbb")),
	mcp.WithString("accent", mcp.Description("Accent theme colour as #rrggbb")),
	mcp.WithString("output_path", mcp.Description("File to write the HTML to")),
)
