// Package mcp exposes the note store as MCP tools over stdio, so agent
// clients can create, read, save, and export notebook notes.
package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/swapavan11/apricity-notebook/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"note_create": {
		def:     createToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"note_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"note_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"note_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"note_rename": {
		def:     renameToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRename },
	},
	"note_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"note_latest": {
		def:     latestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLatest },
	},
	"note_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"note_purge": {
		def:     purgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurge },
	},
}

// Tool definitions

var createToolDef = mcp.NewTool("note_create",
	mcp.WithDescription("Create a new empty notebook note with a title."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Note title, unique among active notes")),
	mcp.WithString("document_id", mcp.Description("Optional source PDF association")),
)

var listToolDef = mcp.NewTool("note_list",
	mcp.WithDescription("List note summaries ordered by most recently updated."),
	mcp.WithNumber("limit", mcp.Description("Page size, default 20, max 100")),
	mcp.WithNumber("offset", mcp.Description("Pagination offset")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted notes")),
)

var fetchToolDef = mcp.NewTool("note_fetch",
	mcp.WithDescription("Fetch a full note: content markup, strokes, and snapshot."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note ULID")),
	mcp.WithBoolean("include_deleted", mcp.Description("Allow fetching a soft-deleted note")),
)

var saveToolDef = mcp.NewTool("note_save",
	mcp.WithDescription("Save a note's title and content markup. Omitted fields, including ink, are left unchanged."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note ULID")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithString("content", mcp.Description("Serialized rich-text markup")),
	mcp.WithString("document_id", mcp.Description("Source PDF association")),
)

var renameToolDef = mcp.NewTool("note_rename",
	mcp.WithDescription("Rename a note without touching its content."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note ULID")),
	mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
)

var deleteToolDef = mcp.NewTool("note_delete",
	mcp.WithDescription("Soft-delete a note. It disappears from list and fetch until purged."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note ULID")),
)

var latestToolDef = mcp.NewTool("note_latest",
	mcp.WithDescription("Get the most recently updated note, or null when the store is empty."),
	mcp.WithBoolean("include_content", mcp.Description("Include the content markup")),
)

var exportToolDef = mcp.NewTool("note_export",
	mcp.WithDescription("Render a note to a paginated PDF file and return its path."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note ULID")),
	mcp.WithString("path", mcp.Description("Output path; defaults to the exports directory")),
)

var purgeToolDef = mcp.NewTool("note_purge",
	mcp.WithDescription("Permanently remove soft-deleted notes."),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge notes deleted at least this many days ago")),
)

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with notebook tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, baseDir, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"notebook",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, baseDir)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, baseDir, version string) error {
	s := NewServer(db, cfg, baseDir, version)
	return server.ServeStdio(s)
}
