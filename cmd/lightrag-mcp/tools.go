package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/lightrag-gateway/internal/catalog"
	"github.com/bobmcallan/lightrag-gateway/internal/dispatch"
	"github.com/bobmcallan/lightrag-gateway/internal/lightrag"
)

// registerTools registers every catalog operation on the MCP server, wiring
// each to a handler that dispatches against the single configured backend.
// The prefix is applied to tool names and descriptions; an empty prefix
// registers bare names.
func registerTools(s *mcpserver.MCPServer, d *dispatch.Dispatcher, namespace, prefix string) {
	for _, desc := range catalog.Operations {
		s.AddTool(desc.Tool(prefix), makeToolHandler(d, namespace, desc))
	}
}

func makeToolHandler(d *dispatch.Dispatcher, namespace string, desc catalog.Descriptor) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := d.Invoke(ctx, namespace, desc, request.GetArguments())
		if err != nil {
			lrErr := lightrag.AsError(err)
			return errorResult(fmt.Sprintf("Error (%s): %s", lrErr.Kind, lrErr.Message)), nil
		}
		return textResult(prettyJSON(data)), nil
	}
}

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

func prettyJSON(data json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
