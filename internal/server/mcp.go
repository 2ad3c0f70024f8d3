package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/lightrag-gateway/internal/catalog"
	"github.com/bobmcallan/lightrag-gateway/internal/common"
	"github.com/bobmcallan/lightrag-gateway/internal/dispatch"
	"github.com/bobmcallan/lightrag-gateway/internal/lightrag"
)

// newMCPHandler builds the streamable HTTP MCP endpoint for one namespace.
// Every catalog operation is registered under the namespaced tool name and
// dispatched against that namespace's backend. Stateless: each request stands
// alone, so the endpoint needs no session affinity behind a load balancer.
func newMCPHandler(d *dispatch.Dispatcher, namespace string) http.Handler {
	s := mcpserver.NewMCPServer(
		"lightrag-gateway",
		common.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	for _, desc := range catalog.Operations {
		desc := desc
		s.AddTool(desc.Tool(namespace), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			data, err := d.Invoke(ctx, namespace, desc, request.GetArguments())
			if err != nil {
				e := lightrag.AsError(err)
				return mcp.NewToolResultError(fmt.Sprintf("Error (%s): %s", e.Kind, e.Message)), nil
			}
			return mcp.NewToolResultText(string(data)), nil
		})
	}

	return mcpserver.NewStreamableHTTPServer(s,
		mcpserver.WithStateLess(true),
	)
}
