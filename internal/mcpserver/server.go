// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the extension list as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/extdeck/internal/models"
	"github.com/starford/extdeck/internal/session"
)

const dataFormatURI = "extdeck://data-format"

// Server wraps the MCP server with extension list tools.
type Server struct {
	mcp  *server.MCPServer
	sess *session.Session
}

// New creates a new MCP server with all tools registered.
func New(sess *session.Session) *Server {
	s := &Server{sess: sess}

	s.mcp = server.NewMCPServer(
		"Extdeck",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_extensions",
		mcp.WithDescription("List the visible extensions with their canonical index. "+
			"An optional filter is applied first and stays selected."),
		mcp.WithString("filter", mcp.Description("Filter mode"), mcp.Enum("all", "active", "inactive")),
	), s.listExtensions)

	s.mcp.AddTool(mcp.NewTool("set_filter",
		mcp.WithDescription("Select which extensions are visible."),
		mcp.WithString("mode", mcp.Required(), mcp.Description("Filter mode"), mcp.Enum("all", "active", "inactive")),
	), s.setFilter)

	s.mcp.AddTool(mcp.NewTool("toggle_extension",
		mcp.WithDescription("Flip an extension between active and inactive."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Canonical index from list_extensions")),
		mcp.WithString("name", mcp.Description("Expected name at index; the call fails if it no longer matches")),
	), s.toggleExtension)

	s.mcp.AddTool(mcp.NewTool("remove_extension",
		mcp.WithDescription("Remove an extension from the list. Nothing is removed unless confirm is true. "+
			"Indices of later extensions shift down by one."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Canonical index from list_extensions")),
		mcp.WithString("name", mcp.Description("Expected name at index; the call fails if it no longer matches")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to remove")),
	), s.removeExtension)

	s.mcp.AddTool(mcp.NewTool("get_data_format",
		mcp.WithDescription("Returns the extension data file format, including its JSON Schema."),
	), s.getDataFormat)

	// Resource: data format contract.
	s.mcp.AddResource(
		mcp.NewResource(dataFormatURI, "Extension Data Format",
			mcp.WithResourceDescription("JSON format of the extension data file."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDataFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type extensionItem struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	IsActive    bool   `json:"isActive"`
}

type listResult struct {
	Filter     string          `json:"filter"`
	Total      int             `json:"total"`
	Extensions []extensionItem `json:"extensions"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listExtensions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		snap session.Snapshot
		err  error
	)
	if raw := req.GetString("filter", ""); raw != "" {
		mode, parseErr := models.ParseFilter(raw)
		if parseErr != nil {
			return mcp.NewToolResultError(parseErr.Error()), nil
		}
		snap, err = s.sess.SelectAndSnapshot(mode)
	} else {
		snap, err = s.sess.Snapshot()
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items := make([]extensionItem, len(snap.Visible))
	for i, e := range snap.Visible {
		items[i] = extensionItem{
			Index:       e.Index,
			Name:        e.Extension.Name,
			Description: e.Extension.Description,
			Logo:        e.Extension.Logo,
			IsActive:    e.Extension.IsActive,
		}
	}
	return jsonResult(listResult{Filter: snap.Filter.String(), Total: snap.Total, Extensions: items})
}

func (s *Server) setFilter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := models.ParseFilter(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	changed, err := s.sess.Select(mode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !changed {
		return mcp.NewToolResultText(fmt.Sprintf("filter already %s", mode)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("filter set to %s", mode)), nil
}

func (s *Server) toggleExtension(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ext, err := s.sess.Toggle(index, req.GetString("name", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state := "inactive"
	if ext.IsActive {
		state = "active"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s is now %s", ext.Name, state)), nil
}

func (s *Server) removeExtension(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := req.GetString("name", "")
	confirmed := req.GetBool("confirm", false)

	ext, err := s.sess.Lookup(index, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	removed, err := s.sess.Remove(index, ext.Name, func(string) bool { return confirmed })
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !removed {
		return mcp.NewToolResultText(fmt.Sprintf("not removed: set confirm to true to remove %q", ext.Name)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", ext.Name)), nil
}

func (s *Server) getDataFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DataFormatContract), nil
}

func (s *Server) readDataFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      dataFormatURI,
			MIMEType: "text/markdown",
			Text:     DataFormatContract,
		},
	}, nil
}
