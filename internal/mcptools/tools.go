// Package mcptools exposes the directory as MCP tools so agents can share
// and resolve magnet URIs next to the browser frontend.
package mcptools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/krisalay/filesoup/types"
)

const (
	ToolShare  = "share-magnet"
	ToolLookup = "lookup-magnet"
)

// Directory is what the tools need from the directory service.
type Directory interface {
	Create(payload string) (types.Entry, error)
	Lookup(id string) (types.Entry, bool)
}

// NewServer returns an MCP server with both tools registered.
func NewServer(dir Directory, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"filesoup",
		version,
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)

	share := mcp.NewTool(ToolShare,
		mcp.WithDescription("Stores a magnet URI and returns a short id for it. "+
			"Entries are forgotten after a period without lookups."),
		mcp.WithString("magnetUri", mcp.Required(), mcp.Description("The magnet URI to share, starting with magnet:?")),
	)
	s.AddTool(share, ShareHandler(dir))

	lookup := mcp.NewTool(ToolLookup,
		mcp.WithDescription("Resolves an id returned by share-magnet to its magnet URI. "+
			"A successful lookup keeps the entry alive longer."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The id, e.g. basil-corn-salt-thyme-kale")),
	)
	s.AddTool(lookup, LookupHandler(dir))

	return s
}

// NewHTTPHandler serves s over the streamable HTTP transport.
func NewHTTPHandler(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s)
}

// ShareHandler returns the handler for the share-magnet tool.
func ShareHandler(dir Directory) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		payload, err := req.RequireString("magnetUri")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ent, err := dir.Create(payload)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return entryResult(ent)
	}
}

// LookupHandler returns the handler for the lookup-magnet tool.
func LookupHandler(dir Directory) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ent, ok := dir.Lookup(id)
		if !ok {
			return mcp.NewToolResultError("file not found: " + id), nil
		}
		return entryResult(ent)
	}
}

func entryResult(ent types.Entry) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(ent)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
