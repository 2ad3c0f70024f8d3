package catalog

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Op identifies one supported remote operation. The set is closed: dispatch
// switches over these constants so a missing handler is a compile-time gap,
// not a runtime surprise.
type Op int

const (
	OpInsertText Op = iota
	OpInsertTexts
	OpUploadDocument
	OpScanDocuments
	OpGetDocuments
	OpGetDocumentsPaginated
	OpDeleteDocument
	OpClearDocuments
	OpQueryText
	OpQueryTextStream
	OpGetKnowledgeGraph
	OpGetGraphLabels
	OpCheckEntityExists
	OpUpdateEntity
	OpUpdateRelation
	OpDeleteEntity
	OpDeleteRelation
	OpGetPipelineStatus
	OpGetTrackStatus
	OpGetDocumentStatusCounts
	OpClearCache
	OpGetHealth
)

// Descriptor declares one operation: its bare name, description, required
// argument fields, and the schema exposed over MCP. The catalog is compiled
// in and immutable.
type Descriptor struct {
	Op          Op
	Name        string
	Description string
	Required    []string
	Streaming   bool

	tool func(name, description string) mcp.Tool
}

// Tool builds the mcp.Tool for this operation under the given namespace:
// prefixed name, bracket-marked description, unchanged schema.
func (d Descriptor) Tool(namespace string) mcp.Tool {
	return d.tool(AddPrefix(d.Name, namespace), AddDescriptionMarker(d.Description, namespace))
}

// Operations is the full catalog in declaration order. Listings iterate this
// slice directly so tool order is stable across calls.
var Operations = []Descriptor{
	{
		Op:          OpInsertText,
		Name:        "insert_text",
		Description: "Insert text content into LightRAG",
		Required:    []string{"text"},
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("text", mcp.Required(), mcp.Description("Text content to insert")),
				mcp.WithString("title", mcp.Description("Optional title, used as the document's file source")),
			)
		},
	},
	{
		Op:          OpInsertTexts,
		Name:        "insert_texts",
		Description: "Insert multiple text documents into LightRAG",
		Required:    []string{"texts"},
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithArray("texts", mcp.Required(),
					mcp.Description("Array of text documents to insert"),
					mcp.Items(map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title":    map[string]any{"type": "string"},
							"content":  map[string]any{"type": "string"},
							"metadata": map[string]any{"type": "object"},
						},
						"required": []string{"content"},
					}),
				),
			)
		},
	},
	{
		Op:          OpUploadDocument,
		Name:        "upload_document",
		Description: "Upload a document file to LightRAG",
		Required:    []string{"file_path"},
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to the file to upload")),
			)
		},
	},
	{
		Op:          OpScanDocuments,
		Name:        "scan_documents",
		Description: "Scan for new documents in LightRAG",
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name, mcp.WithDescription(desc))
		},
	},
	{
		Op:          OpGetDocuments,
		Name:        "get_documents",
		Description: "Retrieve all documents from LightRAG",
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name, mcp.WithDescription(desc))
		},
	},
	{
		Op:          OpGetDocumentsPaginated,
		Name:        "get_documents_paginated",
		Description: "Retrieve documents with pagination. page_size must be 1-100; use page_size=20 for typical browsing.",
		Required:    []string{"page", "page_size"},
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithNumber("page", mcp.Required(), mcp.Description("Page number (1-based)")),
				mcp.WithNumber("page_size", mcp.Required(), mcp.Description("Number of documents per page (1-100)")),
				mcp.WithString("status_filter", mcp.Description("Optional document status to filter by")),
			)
		},
	},
	{
		Op:          OpDeleteDocument,
		Name:        "delete_document",
		Description: "Delete one or more documents by ID. Use either 'document_id' for single deletion or 'document_ids' for batch deletion.",
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("document_id", mcp.Description("Single document ID to delete")),
				mcp.WithArray("document_ids", mcp.WithStringItems(), mcp.Description("Array of document IDs to delete (batch deletion)")),
				mcp.WithBoolean("delete_file", mcp.Description("Also delete the corresponding file in the upload directory")),
				mcp.WithBoolean("delete_llm_cache", mcp.Description("Also delete cached LLM extraction results for the documents")),
			)
		},
	},
	{
		Op:          OpClearDocuments,
		Name:        "clear_documents",
		Description: "Clear all documents from LightRAG",
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name, mcp.WithDescription(desc))
		},
	},
	{
		Op:          OpQueryText,
		Name:        "query_text",
		Description: "Query LightRAG with text",
		Required:    []string{"query"},
		tool:        queryTool,
	},
	{
		Op:          OpQueryTextStream,
		Name:        "query_text_stream",
		Description: "Stream query results from LightRAG",
		Required:    []string{"query"},
		Streaming:   true,
		tool:        queryTool,
	},
	{
		Op:          OpGetKnowledgeGraph,
		Name:        "get_knowledge_graph",
		Description: "Retrieve the knowledge graph from LightRAG",
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("label", mcp.Description("Graph label to retrieve (default '*' for everything)")),
			)
		},
	},
	{
		Op:          OpGetGraphLabels,
		Name:        "get_graph_labels",
		Description: "Get labels from the knowledge graph",
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name, mcp.WithDescription(desc))
		},
	},
	{
		Op:          OpCheckEntityExists,
		Name:        "check_entity_exists",
		Description: "Check if an entity exists in the knowledge graph",
		Required:    []string{"entity_name"},
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("entity_name", mcp.Required(), mcp.Description("Name of the entity to check")),
			)
		},
	},
	{
		Op:          OpUpdateEntity,
		Name:        "update_entity",
		Description: "Update an entity in the knowledge graph",
		Required:    []string{"entity_id", "properties"},
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("entity_id", mcp.Required(), mcp.Description("ID of the entity to update")),
				mcp.WithObject("properties", mcp.Required(), mcp.Description("Properties to update")),
			)
		},
	},
	{
		Op:          OpUpdateRelation,
		Name:        "update_relation",
		Description: "Update a relation in the knowledge graph",
		Required:    []string{"source_id", "target_id", "updated_data"},
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("source_id", mcp.Required(), mcp.Description("ID of the source entity")),
				mcp.WithString("target_id", mcp.Required(), mcp.Description("ID of the target entity")),
				mcp.WithObject("updated_data", mcp.Required(), mcp.Description("Properties to update on the relation")),
			)
		},
	},
	{
		Op:          OpDeleteEntity,
		Name:        "delete_entity",
		Description: "Delete an entity from the knowledge graph",
		Required:    []string{"entity_id"},
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("entity_id", mcp.Required(), mcp.Description("ID of the entity to delete")),
			)
		},
	},
	{
		Op:          OpDeleteRelation,
		Name:        "delete_relation",
		Description: "Delete a relation from the knowledge graph",
		Required:    []string{"relation_id"},
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("relation_id", mcp.Required(), mcp.Description("ID of the relation to delete")),
			)
		},
	},
	{
		Op:          OpGetPipelineStatus,
		Name:        "get_pipeline_status",
		Description: "Get the pipeline status from LightRAG",
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name, mcp.WithDescription(desc))
		},
	},
	{
		Op:          OpGetTrackStatus,
		Name:        "get_track_status",
		Description: "Get track status by ID",
		Required:    []string{"track_id"},
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("track_id", mcp.Required(), mcp.Description("ID of the track to get status for")),
			)
		},
	},
	{
		Op:          OpGetDocumentStatusCounts,
		Name:        "get_document_status_counts",
		Description: "Get document status counts",
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name, mcp.WithDescription(desc))
		},
	},
	{
		Op:          OpClearCache,
		Name:        "clear_cache",
		Description: "Clear LightRAG cache",
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithString("cache_type", mcp.Description("Optional cache type to clear")),
			)
		},
	},
	{
		Op:          OpGetHealth,
		Name:        "get_health",
		Description: "Check LightRAG server health",
		tool: func(name, desc string) mcp.Tool {
			return mcp.NewTool(name, mcp.WithDescription(desc))
		},
	},
}

// QueryModes are the modes accepted by query_text and query_text_stream.
var QueryModes = []string{"naive", "local", "global", "hybrid"}

func queryTool(name, desc string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(desc),
		mcp.WithString("query", mcp.Required(), mcp.Description("Query text")),
		mcp.WithString("mode", mcp.Description("Query mode"), mcp.Enum(QueryModes...), mcp.DefaultString("hybrid")),
		mcp.WithBoolean("only_need_context", mcp.Description("Only return context without generation"), mcp.DefaultBool(false)),
	)
}

var byName = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(Operations))
	for _, d := range Operations {
		m[d.Name] = d
	}
	return m
}()

// Lookup finds a descriptor by bare operation name.
func Lookup(name string) (Descriptor, bool) {
	d, ok := byName[name]
	return d, ok
}
