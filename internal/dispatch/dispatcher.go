// Package dispatch connects namespaced tool invocations to backend calls:
// strip the namespace prefix, look the operation up in the catalog, validate
// arguments, resolve the backend route, forward.
package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/lightrag-gateway/internal/catalog"
	"github.com/bobmcallan/lightrag-gateway/internal/common"
	"github.com/bobmcallan/lightrag-gateway/internal/lightrag"
	"github.com/bobmcallan/lightrag-gateway/internal/routes"
)

// Dispatcher is stateless between calls; all state is the immutable route
// table and catalog.
type Dispatcher struct {
	table  *routes.Table
	logger *common.Logger
}

// New creates a dispatcher over the given route table.
func New(table *routes.Table, logger *common.Logger) *Dispatcher {
	return &Dispatcher{table: table, logger: logger}
}

// Table returns the underlying route table.
func (d *Dispatcher) Table() *routes.Table { return d.table }

// ToolInfo is one entry of a tool listing.
type ToolInfo struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	InputSchema mcp.ToolInputSchema `json:"input_schema"`
	Streaming   bool                `json:"-"`
}

// ListTools emits the catalog for a namespace in catalog order, each name
// prefixed and each description carrying the namespace marker.
func (d *Dispatcher) ListTools(namespace string) []ToolInfo {
	out := make([]ToolInfo, 0, len(catalog.Operations))
	for _, desc := range catalog.Operations {
		tool := desc.Tool(namespace)
		out = append(out, ToolInfo{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
			Streaming:   desc.Streaming,
		})
	}
	return out
}

// Describe strips the namespace prefix from a tool name and resolves the bare
// operation in the catalog.
func (d *Dispatcher) Describe(namespace, toolName string) (catalog.Descriptor, error) {
	bare, err := catalog.RemovePrefix(toolName, namespace)
	if err != nil {
		return catalog.Descriptor{}, err
	}
	desc, ok := catalog.Lookup(bare)
	if !ok {
		return catalog.Descriptor{}, lightrag.NewError(lightrag.KindUnknownOperation,
			"unknown operation %q", bare)
	}
	return desc, nil
}

// Call executes one namespaced, non-streaming tool invocation end to end.
// Streaming operations invoked here are buffered into a single response.
func (d *Dispatcher) Call(ctx context.Context, namespace, toolName string, args map[string]any) (json.RawMessage, error) {
	desc, err := d.Describe(namespace, toolName)
	if err != nil {
		return nil, err
	}
	return d.Invoke(ctx, namespace, desc, args)
}

// CallStream executes a namespaced streaming invocation, returning the lazy
// chunk stream. Only streaming-declared operations may be streamed.
func (d *Dispatcher) CallStream(ctx context.Context, namespace, toolName string, args map[string]any) (*lightrag.QueryStream, error) {
	desc, err := d.Describe(namespace, toolName)
	if err != nil {
		return nil, err
	}
	return d.InvokeStream(ctx, namespace, desc, args)
}

// Invoke validates arguments, resolves the route, and forwards a resolved
// operation. Validation failures never reach the network.
func (d *Dispatcher) Invoke(ctx context.Context, namespace string, desc catalog.Descriptor, args map[string]any) (json.RawMessage, error) {
	if args == nil {
		args = map[string]any{}
	}
	if err := catalog.ValidateArguments(desc, args); err != nil {
		return nil, err
	}
	route, err := d.table.Resolve(namespace)
	if err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("namespace", namespace).
		Str("operation", desc.Name).
		Msg("Dispatching tool call")

	if desc.Streaming {
		return d.collectStream(ctx, route.Client, args)
	}
	return invoke(ctx, route.Client, desc.Op, args)
}

// InvokeStream is the streaming counterpart of Invoke.
func (d *Dispatcher) InvokeStream(ctx context.Context, namespace string, desc catalog.Descriptor, args map[string]any) (*lightrag.QueryStream, error) {
	if !desc.Streaming {
		return nil, lightrag.NewError(lightrag.KindValidation,
			"operation %q does not support streaming", desc.Name)
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := catalog.ValidateArguments(desc, args); err != nil {
		return nil, err
	}
	route, err := d.table.Resolve(namespace)
	if err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("namespace", namespace).
		Str("operation", desc.Name).
		Msg("Dispatching streaming tool call")

	return route.Client.QueryTextStream(ctx, queryRequest(args))
}

// collectStream buffers a streamed query into one response for callers that
// did not ask for streaming (the stdio tool-call protocol, for one).
func (d *Dispatcher) collectStream(ctx context.Context, c *lightrag.Client, args map[string]any) (json.RawMessage, error) {
	stream, err := c.QueryTextStream(ctx, queryRequest(args))
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(chunk)
	}
	return json.Marshal(map[string]string{"response": sb.String()})
}

func queryRequest(args map[string]any) lightrag.QueryRequest {
	return lightrag.QueryRequest{
		Query:           catalog.StringArg(args, "query", ""),
		Mode:            catalog.StringArg(args, "mode", "hybrid"),
		OnlyNeedContext: catalog.BoolArg(args, "only_need_context", false),
	}
}

// invoke forwards one non-streaming operation. The switch is exhaustive over
// the catalog's operation enum.
func invoke(ctx context.Context, c *lightrag.Client, op catalog.Op, args map[string]any) (json.RawMessage, error) {
	switch op {
	case catalog.OpInsertText:
		return c.InsertText(ctx,
			catalog.StringArg(args, "text", ""),
			catalog.StringArg(args, "title", ""))

	case catalog.OpInsertTexts:
		docs, err := textDocuments(args)
		if err != nil {
			return nil, err
		}
		return c.InsertTexts(ctx, docs)

	case catalog.OpUploadDocument:
		return c.UploadDocument(ctx, catalog.StringArg(args, "file_path", ""))

	case catalog.OpScanDocuments:
		return c.ScanDocuments(ctx)

	case catalog.OpGetDocuments:
		return c.GetDocuments(ctx)

	case catalog.OpGetDocumentsPaginated:
		return c.GetDocumentsPaginated(ctx,
			catalog.IntArg(args, "page", 1),
			catalog.IntArg(args, "page_size", 10),
			catalog.StringArg(args, "status_filter", ""))

	case catalog.OpDeleteDocument:
		docIDs := catalog.StringSliceArg(args, "document_ids")
		if len(docIDs) == 0 {
			docIDs = []string{catalog.StringArg(args, "document_id", "")}
		}
		return c.DeleteDocuments(ctx, docIDs,
			catalog.BoolArg(args, "delete_file", false),
			catalog.BoolArg(args, "delete_llm_cache", false))

	case catalog.OpClearDocuments:
		return c.ClearDocuments(ctx)

	case catalog.OpQueryText:
		return c.QueryText(ctx, queryRequest(args))

	case catalog.OpGetKnowledgeGraph:
		return c.GetKnowledgeGraph(ctx, catalog.StringArg(args, "label", "*"))

	case catalog.OpGetGraphLabels:
		return c.GetGraphLabels(ctx)

	case catalog.OpCheckEntityExists:
		return c.CheckEntityExists(ctx, catalog.StringArg(args, "entity_name", ""))

	case catalog.OpUpdateEntity:
		return c.UpdateEntity(ctx,
			catalog.StringArg(args, "entity_id", ""),
			catalog.MapArg(args, "properties"))

	case catalog.OpUpdateRelation:
		return c.UpdateRelation(ctx,
			catalog.StringArg(args, "source_id", ""),
			catalog.StringArg(args, "target_id", ""),
			catalog.MapArg(args, "updated_data"))

	case catalog.OpDeleteEntity:
		return c.DeleteEntity(ctx, catalog.StringArg(args, "entity_id", ""))

	case catalog.OpDeleteRelation:
		return c.DeleteRelation(ctx, catalog.StringArg(args, "relation_id", ""))

	case catalog.OpGetPipelineStatus:
		return c.GetPipelineStatus(ctx)

	case catalog.OpGetTrackStatus:
		return c.GetTrackStatus(ctx, catalog.StringArg(args, "track_id", ""))

	case catalog.OpGetDocumentStatusCounts:
		return c.GetDocumentStatusCounts(ctx)

	case catalog.OpClearCache:
		return c.ClearCache(ctx, catalog.StringArg(args, "cache_type", ""))

	case catalog.OpGetHealth:
		return c.GetHealth(ctx)

	case catalog.OpQueryTextStream:
		// Handled by the Streaming branch in Invoke.
		return nil, lightrag.NewError(lightrag.KindUnknownOperation, "query_text_stream requires streaming dispatch")

	default:
		return nil, lightrag.NewError(lightrag.KindUnknownOperation, "unhandled operation %d", op)
	}
}

// textDocuments decodes the insert_texts payload, accepting both object
// documents and bare strings.
func textDocuments(args map[string]any) ([]lightrag.TextDocument, error) {
	raw, ok := args["texts"].([]any)
	if !ok {
		return nil, lightrag.NewError(lightrag.KindValidation, "'texts' must be an array")
	}
	if len(raw) == 0 {
		return nil, lightrag.NewError(lightrag.KindValidation, "'texts' cannot be empty")
	}

	docs := make([]lightrag.TextDocument, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			docs = append(docs, lightrag.TextDocument{Content: v})
		case map[string]any:
			content, _ := v["content"].(string)
			if content == "" {
				return nil, lightrag.NewError(lightrag.KindValidation, "each text document requires 'content'")
			}
			title, _ := v["title"].(string)
			meta, _ := v["metadata"].(map[string]any)
			docs = append(docs, lightrag.TextDocument{Title: title, Content: content, Metadata: meta})
		default:
			return nil, lightrag.NewError(lightrag.KindValidation, "'texts' entries must be strings or objects")
		}
	}
	return docs, nil
}
